package planner

import (
	"errors"
	"fmt"

	"github.com/voocel/recon/diff"
)

// Recoverable search failures that cause backtracking within a single
// Find call rather than aborting it outright.
var (
	ErrConditionNotMet      = errors.New("planner: condition not met")
	ErrLoopDetected         = errors.New("planner: loop detected")
	ErrRecursionDetected    = errors.New("planner: recursion detected")
	ErrMethodExpansionEmpty = errors.New("planner: method expansion empty")
	ErrMergeFailed          = errors.New("planner: merge failed")
)

// SearchFailedError reports that the full search space rooted at Depth was
// exhausted without finding an applicable task for every pending op.
type SearchFailedError struct {
	Depth int
}

func (e *SearchFailedError) Error() string {
	return fmt.Sprintf("planner: search failed at depth %d", e.Depth)
}

// ConflictError describes two branches' pending changes that share a path
// prefix, logged when a parallel method expansion falls back to sequential.
type ConflictError struct {
	A, B diff.Operation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("planner: conflicting operations %s %s and %s %s", e.A.Kind, e.A.Path, e.B.Kind, e.B.Path)
}
