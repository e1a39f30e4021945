package diagnostics

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestListErrorsFiltersBySeverity(t *testing.T) {
	list := List{
		{Severity: Error, Code: CodeUndefinedVariable, Message: "undefined variable x", Span: Span{Line: 1, Column: 1}},
		{Severity: Warning, Code: CodeUnreachableArm, Message: "unreachable arm", Span: Span{Line: 2, Column: 3}},
		{Severity: Error, Code: CodeTypeMismatch, Message: "expected Int, found Str", Span: Span{Line: 3, Column: 5}},
	}

	want := List{list[0], list[2]}
	got := list.Errors()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Errors() mismatch (-want +got):\n%s", diff)
	}

	wantWarnings := List{list[1]}
	if diff := cmp.Diff(wantWarnings, list.Warnings()); diff != "" {
		t.Fatalf("Warnings() mismatch (-want +got):\n%s", diff)
	}
}

func TestListHasErrors(t *testing.T) {
	clean := List{{Severity: Warning, Code: CodeUnreachableArm}}
	if clean.HasErrors() {
		t.Fatal("expected a warning-only list to report HasErrors() == false")
	}

	withError := append(List{}, clean...)
	withError = append(withError, Diagnostic{Severity: Error, Code: CodeUndefinedVariable})
	if !withError.HasErrors() {
		t.Fatal("expected a list containing an Error severity diagnostic to report HasErrors() == true")
	}
}

func TestDiagnosticStringIncludesHelpAndRelated(t *testing.T) {
	d := Diagnostic{
		Severity: Error,
		Code:     CodeNonExhaustive,
		Message:  "match is not exhaustive",
		Span:     Span{Line: 1, Column: 1},
		Help:     "add a wildcard arm",
		Related:  []Related{{Span: Span{Line: 2, Column: 1}, Message: "missing case here"}},
	}
	s := d.String()
	for _, want := range []string{"E0204", "match is not exhaustive", "add a wildcard arm", "missing case here"} {
		if !strings.Contains(s, want) {
			t.Errorf("Diagnostic.String() = %q, want substring %q", s, want)
		}
	}
}
