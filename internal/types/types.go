// Package types provides shared types used across the farol codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error produced by the scoring packages wraps exactly one
// of these, so callers can branch with errors.Is without knowing the concrete error.
var (
	ErrValidation  = errors.New("validation error")
	ErrLookup      = errors.New("lookup error")
	ErrComputation = errors.New("computation error")
)

// Direction determines whether a larger raw value maps to a larger or smaller score.
type Direction int

const (
	HighIsGood Direction = iota
	LowIsGood
)

// String returns the flag spelling of the direction.
func (d Direction) String() string {
	if d == LowIsGood {
		return "low-is-good"
	}
	return "high-is-good"
}

// ParseDirection parses "high-is-good" or "low-is-good".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high-is-good", "high":
		return HighIsGood, nil
	case "low-is-good", "low":
		return LowIsGood, nil
	default:
		return HighIsGood, fmt.Errorf("%w: unknown direction %q (want high-is-good or low-is-good)", ErrValidation, s)
	}
}

// Status is the three-tier classification of a score.
type Status string

// Status constants. StatusNone marks a record without a score.
const (
	StatusRed    Status = "red"
	StatusYellow Status = "yellow"
	StatusGreen  Status = "green"
	StatusNone   Status = ""
)

// Score bounds.
const (
	MinScore = 0.0
	MaxScore = 10.0
)
