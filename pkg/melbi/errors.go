package melbi

import (
	"strconv"
	"strings"

	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/limits"
)

// CompileError wraps the error-severity diagnostics from compile() (spec.md
// §6.1 item 1). Warnings (e.g. unreachable match arms) do not produce a
// CompileError — they travel alongside a successful CompiledExpression.
type CompileError struct {
	Diagnostics diagnostics.List
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	sb.WriteString("melbi: compile failed:\n")
	sb.WriteString(e.Diagnostics.Error())
	return sb.String()
}

// RuntimeError wraps a runtime ErrorTag surfaced from evaluate() (spec.md
// §7 category 4) that the host chose not to (or could not) absorb with
// otherwise/match before the top level.
type RuntimeError struct {
	Code    diagnostics.Code
	Message string
}

func (e *RuntimeError) Error() string {
	return "melbi: runtime error [" + string(e.Code) + "]: " + e.Message
}

// ResourceError wraps a resource-bound breach (spec.md §5, §7 category 5):
// evaluation was aborted, not merely flagged.
type ResourceError struct {
	Kind   string
	Limit  int
	Actual int
}

func (e *ResourceError) Error() string {
	return "melbi: resource exceeded (" + e.Kind + "): limit " +
		strconv.Itoa(e.Limit) + ", reached " + strconv.Itoa(e.Actual)
}

// asResourceError converts a limits.Exceeded into the public ResourceError
// wrapper, keeping internal/limits out of the embedding API's surface.
func asResourceError(err error) error {
	exc, ok := err.(*limits.Exceeded)
	if !ok {
		return err
	}
	return &ResourceError{Kind: exc.Kind.String(), Limit: exc.Limit, Actual: exc.Actual}
}
