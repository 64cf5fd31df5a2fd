package main

import (
	"context"
	"errors"

	"github.com/jward/lattice"
)

// CLIResult is the top-level JSON envelope for all query commands. QueryID
// is a fresh UUID per invocation so results can be correlated in logs.
type CLIResult struct {
	Command    string    `json:"command"`
	QueryID    string    `json:"query_id"`
	Results    any       `json:"results"`
	TotalCount *int      `json:"total_count,omitempty"`
	Error      *CLIError `json:"error,omitempty"`
}

// CLIError carries a machine-readable error kind alongside the message.
type CLIError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// errorKind maps an error to its wire kind.
func errorKind(err error) string {
	switch {
	case errors.Is(err, lattice.ErrIndexNotReady):
		return "index_not_ready"
	case errors.Is(err, lattice.ErrNoElement):
		return "no_element_at_position"
	case errors.Is(err, lattice.ErrNoProvider):
		return "no_provider_for_language"
	case errors.Is(err, lattice.ErrNotTypeOrMethod):
		return "not_a_type_or_method"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "internal"
}
