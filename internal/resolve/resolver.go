// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bookwright-cli/internal/catalog"
	"bookwright-cli/internal/prefs"
	"bookwright-cli/internal/tui"
)

// ErrUnknownSelection is the sentinel wrapped by UnknownSelectionError.
var ErrUnknownSelection = errors.New("unknown selection")

type (
	// Provenance records why a selection was made. It drives user-facing
	// messaging and cache-write decisions.
	Provenance string

	// Kind identifies what a selection chose.
	Kind string

	// Selection is one resolved choice with its provenance.
	Selection struct {
		Kind       Kind
		ID         string
		Provenance Provenance
	}

	// Prompter renders interactive prompts. Implemented by tui.Prompter;
	// tests supply scripted implementations.
	Prompter interface {
		Line(title, placeholder, def string) (string, error)
		Confirm(title string, def bool) (bool, error)
		Menu(title string, items []tui.MenuItem, def int) (string, error)
	}

	// PrefStore is the persisted-preference surface the resolvers need.
	// Implemented by prefs.Store.
	PrefStore interface {
		Get(key string) (string, bool)
		Set(key, value string) error
	}

	// UnknownSelectionError reports an explicit flag value that is not in
	// the catalog. It lists the valid options and never falls through to
	// prompting: an explicit flag is a contract, not a hint.
	UnknownSelectionError struct {
		Kind  Kind
		Input string
		Valid []string
	}

	// ModuleRequest carries the inputs for module resolution.
	ModuleRequest struct {
		// Explicit is the --module flag value ("" when absent).
		Explicit string
		// NonInteractive suppresses all prompting.
		NonInteractive bool
		// CustomTriggers enables the synthetic "use one of my own
		// repositories" menu entry and defines the words that select it.
		// Empty disables the custom-module path.
		CustomTriggers []string
	}

	// ModuleResult is the outcome of module resolution. Custom means the
	// user chose the custom-module path, which bypasses language
	// resolution entirely since a custom template carries its own
	// language.
	ModuleResult struct {
		Selection Selection
		Custom    bool
	}

	// LanguageRequest carries the inputs for language resolution.
	LanguageRequest struct {
		// Explicit is the --language flag value ("" when absent).
		Explicit string
		// NonInteractive suppresses all prompting.
		NonInteractive bool
	}
)

const (
	// ProvenanceExplicit means the value came from a flag.
	ProvenanceExplicit Provenance = "explicit"
	// ProvenanceCached means the value came from the preference store.
	ProvenanceCached Provenance = "cached"
	// ProvenanceDefault means the value was the catalog default.
	ProvenanceDefault Provenance = "default"
	// ProvenanceInteractive means the user chose it at a prompt.
	ProvenanceInteractive Provenance = "interactive"

	// KindModule marks a module selection.
	KindModule Kind = "module"
	// KindLanguage marks a language selection.
	KindLanguage Kind = "language"
)

// Error implements the error interface, listing the valid options so the
// user can correct the flag.
func (e *UnknownSelectionError) Error() string {
	return fmt.Sprintf("unknown %s %q (valid: %s)", e.Kind, e.Input, strings.Join(e.Valid, ", "))
}

// Unwrap returns ErrUnknownSelection for errors.Is compatibility.
func (e *UnknownSelectionError) Unwrap() error {
	return ErrUnknownSelection
}

// ResolveModule selects a module from the catalog snapshot.
func ResolveModule(req ModuleRequest, snap *catalog.Snapshot, store PrefStore, p Prompter) (ModuleResult, error) {
	ids := snap.ModuleIDs()

	// Rule 1: a single option needs no decision, interactive or not.
	if len(ids) == 1 && req.Explicit == "" {
		return ModuleResult{Selection: Selection{KindModule, ids[0], ProvenanceDefault}}, nil
	}

	// Rule 2: an explicit flag is validated strictly and never falls
	// through to prompting.
	if req.Explicit != "" {
		if _, ok := snap.Module(req.Explicit); !ok {
			return ModuleResult{}, &UnknownSelectionError{Kind: KindModule, Input: req.Explicit, Valid: ids}
		}
		if err := store.Set(prefs.KeyModule, req.Explicit); err != nil {
			return ModuleResult{}, err
		}
		return ModuleResult{Selection: Selection{KindModule, req.Explicit, ProvenanceExplicit}}, nil
	}

	// Rule 3: a cached value that left the catalog is treated as absent.
	cached, _ := store.Get(prefs.KeyModule)
	if _, ok := snap.Module(cached); !ok {
		cached = ""
	}

	if req.NonInteractive {
		// Rule 4: valid cache, no prompt.
		if cached != "" {
			if err := store.Set(prefs.KeyModule, cached); err != nil {
				return ModuleResult{}, err
			}
			return ModuleResult{Selection: Selection{KindModule, cached, ProvenanceCached}}, nil
		}
		// Rule 5: deterministic default so repeated runs converge.
		if err := store.Set(prefs.KeyModule, ids[0]); err != nil {
			return ModuleResult{}, err
		}
		return ModuleResult{Selection: Selection{KindModule, ids[0], ProvenanceDefault}}, nil
	}

	// Rule 6: interactive menu.
	items := make([]tui.MenuItem, 0, len(snap.Modules)+1)
	for _, m := range snap.Modules {
		items = append(items, tui.MenuItem{Label: m.Name, Hint: m.Tagline})
	}
	customOffered := len(req.CustomTriggers) > 0
	if customOffered {
		items = append(items, tui.MenuItem{Label: "Use one of my own repositories as a template"})
	}

	def := 1
	if cached != "" {
		for i, id := range ids {
			if id == cached {
				def = i + 1
			}
		}
	}

	raw, err := p.Menu("Which module?", items, def)
	if err != nil {
		return ModuleResult{}, err
	}

	choice := parseMenuChoice(raw, ids, def, menuMatch{
		match: func(input string) (string, bool) {
			if _, ok := snap.Module(input); ok {
				return input, true
			}
			return "", false
		},
		customOffered: customOffered,
		triggers:      req.CustomTriggers,
	})
	if choice.custom {
		return ModuleResult{
			Selection: Selection{KindModule, "", ProvenanceInteractive},
			Custom:    true,
		}, nil
	}

	if err := store.Set(prefs.KeyModule, choice.id); err != nil {
		return ModuleResult{}, err
	}
	return ModuleResult{Selection: Selection{KindModule, choice.id, ProvenanceInteractive}}, nil
}

// ResolveLanguage selects a language within the chosen module. Language
// options depend on the module, so this always runs after ResolveModule.
func ResolveLanguage(req LanguageRequest, module catalog.Module, store PrefStore, p Prompter) (Selection, error) {
	ids := module.LanguageIDs()

	if len(ids) == 0 {
		return Selection{}, fmt.Errorf("module %q has no languages", module.ID)
	}

	// Rule 1.
	if len(ids) == 1 && req.Explicit == "" {
		return Selection{KindLanguage, ids[0], ProvenanceDefault}, nil
	}

	// Rule 2: explicit values go through alias resolution so ISO codes
	// and natural names both work.
	if req.Explicit != "" {
		id := catalog.ResolveAlias(module.Languages, req.Explicit)
		if id == "" {
			return Selection{}, &UnknownSelectionError{Kind: KindLanguage, Input: req.Explicit, Valid: ids}
		}
		if err := store.Set(prefs.KeyLanguage, id); err != nil {
			return Selection{}, err
		}
		return Selection{KindLanguage, id, ProvenanceExplicit}, nil
	}

	// Rule 3.
	cached, _ := store.Get(prefs.KeyLanguage)
	if _, ok := module.Language(cached); !ok {
		cached = ""
	}

	if req.NonInteractive {
		// Rule 4.
		if cached != "" {
			if err := store.Set(prefs.KeyLanguage, cached); err != nil {
				return Selection{}, err
			}
			return Selection{KindLanguage, cached, ProvenanceCached}, nil
		}
		// Rule 5.
		if err := store.Set(prefs.KeyLanguage, ids[0]); err != nil {
			return Selection{}, err
		}
		return Selection{KindLanguage, ids[0], ProvenanceDefault}, nil
	}

	// Rule 6.
	items := make([]tui.MenuItem, 0, len(module.Languages))
	for _, l := range module.Languages {
		items = append(items, tui.MenuItem{Label: l.Name, Hint: l.ID})
	}

	def := 1
	if cached != "" {
		for i, id := range ids {
			if id == cached {
				def = i + 1
			}
		}
	}

	raw, err := p.Menu("Which language?", items, def)
	if err != nil {
		return Selection{}, err
	}

	choice := parseMenuChoice(raw, ids, def, menuMatch{
		match: func(input string) (string, bool) {
			if id := catalog.ResolveAlias(module.Languages, input); id != "" {
				return id, true
			}
			return "", false
		},
	})

	if err := store.Set(prefs.KeyLanguage, choice.id); err != nil {
		return Selection{}, err
	}
	return Selection{KindLanguage, choice.id, ProvenanceInteractive}, nil
}

type (
	// menuMatch configures free-text interpretation for one menu.
	menuMatch struct {
		// match resolves free text to an option identifier.
		match func(string) (string, bool)
		// customOffered means the menu carries the trailing synthetic
		// custom entry.
		customOffered bool
		// triggers are the custom-entry trigger words.
		triggers []string
	}

	// menuChoice is the parsed outcome of a menu answer.
	menuChoice struct {
		id     string
		custom bool
	}
)

// parseMenuChoice interprets a raw menu answer. Prompts are forgiving
// where flags are strict: an out-of-range index or unmatched text falls
// back to the first option rather than erroring.
func parseMenuChoice(raw string, ids []string, def int, m menuMatch) menuChoice {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return menuChoice{id: ids[def-1]}
	}

	if n, err := strconv.Atoi(raw); err == nil {
		switch {
		case n >= 1 && n <= len(ids):
			return menuChoice{id: ids[n-1]}
		case m.customOffered && n == len(ids)+1:
			return menuChoice{custom: true}
		default:
			return menuChoice{id: ids[0]}
		}
	}

	if m.match != nil {
		if id, ok := m.match(raw); ok {
			return menuChoice{id: id}
		}
	}

	if m.customOffered && matchesTrigger(raw, m.triggers) {
		return menuChoice{custom: true}
	}

	return menuChoice{id: ids[0]}
}

// matchesTrigger reports whether input contains any trigger word,
// case-insensitively.
func matchesTrigger(input string, triggers []string) bool {
	lower := strings.ToLower(input)
	for _, trigger := range triggers {
		if trigger == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(trigger)) {
			return true
		}
	}
	return false
}
