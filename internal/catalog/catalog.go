// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bookwright-cli/internal/scan"
)

const (
	// ModuleDescriptorName is the fixed descriptor filename inside a
	// module directory.
	ModuleDescriptorName = "module.info"
	// LanguageDescriptorName is the fixed descriptor filename inside a
	// language directory.
	LanguageDescriptorName = "language.info"

	// workflowSeparator splits an example_workflows item into its
	// command and description halves.
	workflowSeparator = " :: "
)

// ErrCatalogEmpty is returned when the template source was fetched
// successfully but contains no usable modules.
var ErrCatalogEmpty = errors.New("template catalog contains no modules")

type (
	// Module is a top-level template category (a product line).
	// A directory without a readable descriptor is not a module; it is
	// skipped during discovery, never reported as an error.
	Module struct {
		// ID is the directory-derived identifier, unique per snapshot.
		ID string
		// Name is the display name from the descriptor.
		Name string
		// Tagline is the one-line description from the descriptor.
		Tagline string
		// Languages are the variant bundles in discovery order.
		Languages []Language
	}

	// Language is a localized template bundle within one module.
	// Languages are not shared across modules.
	Language struct {
		// ID is the directory-derived identifier.
		ID string
		// Name is the display name from the descriptor.
		Name string
		// Aliases are additional identifiers matched case-sensitively.
		Aliases []string
		// Folders are content directories to create, in order.
		Folders []string
		// InboxReadme is the literal readme block for the inbox folder.
		InboxReadme string
		// ConfigTemplate is the literal project config block, containing
		// {{AUTHOR_NAME}}, {{PROJECT_NAME}} and {{DATE}} placeholders.
		ConfigTemplate string
		// Workflows are example command/description pairs, in order.
		Workflows []Workflow
	}

	// Workflow is one example command with its description.
	Workflow struct {
		Command     string
		Description string
	}

	// Snapshot is the immutable catalog for one invocation.
	Snapshot struct {
		// Root is the checkout directory the snapshot was built from.
		Root string
		// Modules are the discovered modules. Order follows os.ReadDir,
		// which sorts by filename; callers may rely on it only for
		// "first discovered" default tie-breaking.
		Modules []Module
	}
)

// Build walks root and discovers modules (immediate subdirectories with a
// module descriptor) and their languages (immediate subdirectories with a
// language descriptor). Returns ErrCatalogEmpty when no modules are found.
func Build(root string) (*Snapshot, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading template root %s: %w", root, err)
	}

	snap := &Snapshot{Root: root}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		moduleDir := filepath.Join(root, entry.Name())
		module, ok := readModule(moduleDir, entry.Name())
		if !ok {
			continue
		}
		snap.Modules = append(snap.Modules, module)
	}

	if len(snap.Modules) == 0 {
		return nil, fmt.Errorf("%w (looked under %s)", ErrCatalogEmpty, root)
	}
	return snap, nil
}

// Module returns the module with the given identifier.
func (s *Snapshot) Module(id string) (Module, bool) {
	for _, m := range s.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// ModuleIDs returns the module identifiers in discovery order.
func (s *Snapshot) ModuleIDs() []string {
	ids := make([]string, len(s.Modules))
	for i, m := range s.Modules {
		ids[i] = m.ID
	}
	return ids
}

// LanguageIDs returns the language identifiers of m in discovery order.
func (m Module) LanguageIDs() []string {
	ids := make([]string, len(m.Languages))
	for i, l := range m.Languages {
		ids[i] = l.ID
	}
	return ids
}

// Language returns the language with the given identifier.
func (m Module) Language(id string) (Language, bool) {
	for _, l := range m.Languages {
		if l.ID == id {
			return l, true
		}
	}
	return Language{}, false
}

// ResolveAlias matches input against each language's identifier and then
// each of its alias strings, case-sensitively; the first match wins.
// Returns "" when nothing matches. This lets a user type a natural name
// ("english") or ISO code instead of the internal identifier.
func ResolveAlias(languages []Language, input string) string {
	for _, l := range languages {
		if l.ID == input {
			return l.ID
		}
		for _, alias := range l.Aliases {
			if alias == input {
				return l.ID
			}
		}
	}
	return ""
}

// readModule loads one module directory. ok is false when the directory
// has no readable descriptor.
func readModule(dir, id string) (Module, bool) {
	data, err := os.ReadFile(filepath.Join(dir, ModuleDescriptorName))
	if err != nil {
		return Module{}, false
	}
	doc := string(data)

	module := Module{
		ID:      id,
		Name:    scan.Scalar(doc, "name"),
		Tagline: scan.Scalar(doc, "tagline"),
	}
	if module.Name == "" {
		module.Name = id
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return module, true
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		lang, ok := readLanguage(filepath.Join(dir, entry.Name()), entry.Name())
		if !ok {
			continue
		}
		module.Languages = append(module.Languages, lang)
	}

	return module, true
}

// readLanguage loads one language directory. ok is false when the
// directory has no readable descriptor.
func readLanguage(dir, id string) (Language, bool) {
	data, err := os.ReadFile(filepath.Join(dir, LanguageDescriptorName))
	if err != nil {
		return Language{}, false
	}
	doc := string(data)

	lang := Language{
		ID:             id,
		Name:           scan.Scalar(doc, "name"),
		Aliases:        scan.Array(doc, "aliases"),
		Folders:        scan.Array(doc, "folders"),
		InboxReadme:    scan.BlockScalar(doc, "inbox_readme"),
		ConfigTemplate: scan.BlockScalar(doc, "config_template"),
	}
	if lang.Name == "" {
		lang.Name = id
	}

	// The descriptor may declare a short code differing from the folder
	// name; treat it as an extra alias so both spellings resolve.
	if code := scan.Scalar(doc, "code"); code != "" && code != id {
		lang.Aliases = append(lang.Aliases, code)
	}

	for _, item := range scan.Array(doc, "example_workflows") {
		command, description, found := strings.Cut(item, workflowSeparator)
		if !found {
			command = item
		}
		lang.Workflows = append(lang.Workflows, Workflow{
			Command:     strings.TrimSpace(command),
			Description: strings.TrimSpace(description),
		})
	}

	return lang, true
}
