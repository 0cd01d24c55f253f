// Package transform implements the annotation stage: computed columns added
// to the table between load and filter.
//
// Derivations are pure functions from a row snapshot to a value. A batch of
// annotations is applied non-cumulatively: every derivation sees the table
// as it existed before the batch, so derivations must not depend on columns
// added by siblings in the same batch.
package transform

import (
	"errors"
	"fmt"
	"sync"

	"mitoref/pkg/records"
)

// ErrUnknownDerivation is returned when a config references a derivation
// name that was never registered.
var ErrUnknownDerivation = errors.New("transform: unknown derivation")

var (
	regMu    sync.RWMutex
	registry = map[string]records.Derivation{}
)

// Register makes a named derivation available to configs. It is typically
// called from init functions; re-registering a name replaces it.
func Register(name string, d records.Derivation) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = d
}

// Resolve looks up a registered derivation by name.
func Resolve(name string) (records.Derivation, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDerivation, name)
	}
	return d, nil
}

// Build assembles the derivation batch for one run: named references from
// the config resolved through the registry, then overridden by any function
// values the caller supplied directly.
func Build(named map[string]string, direct map[string]records.Derivation) (map[string]records.Derivation, error) {
	if len(named) == 0 && len(direct) == 0 {
		return nil, nil
	}
	out := make(map[string]records.Derivation, len(named)+len(direct))
	for col, name := range named {
		d, err := Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("annotate %q: %w", col, err)
		}
		out[col] = d
	}
	for col, d := range direct {
		out[col] = d
	}
	return out, nil
}

// Annotate applies the batch to the table via records.Table.WithColumns,
// which guarantees the non-cumulative snapshot semantics.
func Annotate(t *records.Table, batch map[string]records.Derivation) (*records.Table, error) {
	if len(batch) == 0 {
		return t, nil
	}
	out, err := t.WithColumns(batch)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return out, nil
}
