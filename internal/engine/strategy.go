package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how records are fanned out to the RecordCleaner.
type Strategy string

const (
	Sequential Strategy = "sequential"
	Concurrent Strategy = "concurrent"
	Batched    Strategy = "batched"
)

// ErrUnknownStrategy is wrapped by ParseStrategy for unrecognized names.
var ErrUnknownStrategy = errors.New("engine: unknown dispatch strategy")

// Strategies lists every supported strategy.
func Strategies() []Strategy { return []Strategy{Sequential, Concurrent, Batched} }

// ParseStrategy maps a config string onto a Strategy. The empty string
// selects Sequential.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Sequential:
		return Sequential, nil
	case Concurrent:
		return Concurrent, nil
	case Batched:
		return Batched, nil
	default:
		return "", fmt.Errorf("%w %q (want sequential, concurrent or batched)", ErrUnknownStrategy, s)
	}
}

// FieldMode controls what happens to string fields other than quota.
type FieldMode string

const (
	// FieldsNormalize upper-cases and trims spaces, commas and tabs.
	FieldsNormalize FieldMode = "normalize"
	// FieldsPassthrough copies them unchanged.
	FieldsPassthrough FieldMode = "passthrough"
)

// ParseFieldMode maps a config string onto a FieldMode; "" is FieldsNormalize.
func ParseFieldMode(s string) (FieldMode, error) {
	switch FieldMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FieldsNormalize:
		return FieldsNormalize, nil
	case FieldsPassthrough:
		return FieldsPassthrough, nil
	default:
		return "", fmt.Errorf("engine: unknown field mode %q (want normalize or passthrough)", s)
	}
}
