// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessageComposition(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewActionableError("fetch template catalog").
		WithResource("github.com/bookwright/templates").
		WithCause(cause)

	msg := err.Error()
	for _, part := range []string{"failed to fetch template catalog", "github.com/bookwright/templates", "connection refused"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q missing %q", msg, part)
		}
	}
}

func TestUnwrapPreservesChain(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := WrapWithOperation(fmt.Errorf("outer: %w", sentinel), "resolve module")

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the wrapped sentinel")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if WrapWithOperation(nil, "anything") != nil {
		t.Error("wrapping nil should yield nil")
	}
}

func TestRemediationRendersSuggestions(t *testing.T) {
	orig := render
	render = func(in, _ string) (string, error) { return in, nil }
	t.Cleanup(func() { render = orig })

	err := NewActionableError("check host authentication").
		WithSuggestion("Export a token: `export GITHUB_TOKEN=...`")

	out := err.Remediation()
	if !strings.Contains(out, "GITHUB_TOKEN") {
		t.Errorf("remediation %q missing suggestion", out)
	}
}

func TestRemediationFallsBackOnRenderFailure(t *testing.T) {
	orig := render
	render = func(string, string) (string, error) { return "", errors.New("no tty") }
	t.Cleanup(func() { render = orig })

	err := NewActionableError("op").WithSuggestion("do the thing")
	if !strings.Contains(err.Remediation(), "do the thing") {
		t.Error("remediation should fall back to raw markdown")
	}
}

func TestRemediationEmptyWithoutSuggestions(t *testing.T) {
	if got := NewActionableError("op").Remediation(); got != "" {
		t.Errorf("expected empty remediation, got %q", got)
	}
}

func TestActionableExtraction(t *testing.T) {
	inner := NewActionableError("inner op")
	wrapped := fmt.Errorf("context: %w", inner)

	got, ok := Actionable(wrapped)
	if !ok || got.Operation != "inner op" {
		t.Errorf("Actionable = (%v, %v), want inner op", got, ok)
	}

	if _, ok := Actionable(errors.New("plain")); ok {
		t.Error("plain error should not be actionable")
	}
}
