package pskt

import (
	"bytes"
)

// Combine merges other into the document held by c. Fields set on only one
// side are taken from that side, fields set on both sides must be equal, and
// maps are merged key by key. Inputs and outputs are paired by index and the
// tail of the longer vector is kept as is.
//
// On success both c and other are consumed and the merged document is
// returned in a new Combiner. On failure neither handle changes.
func (c *Combiner) Combine(other *Combiner) (*Combiner, error) {
	left, err := c.inner()
	if err != nil {
		return nil, err
	}
	right, err := other.inner()
	if err != nil {
		return nil, err
	}

	combined, err := combineInner(left, right)
	if err != nil {
		return nil, err
	}

	c.take()
	if other != c {
		other.take()
	}
	log.Debugf("Combined documents with %d inputs and %d outputs", combined.Global.InputCount,
		combined.Global.OutputCount)
	return &Combiner{handle: newHandle(combined)}, nil
}

func combineInner(left, right *Inner) (*Inner, error) {
	global, err := left.Global.combine(&right.Global)
	if err != nil {
		return nil, err
	}

	inputs, err := combineVectors(left.Inputs, right.Inputs, (*Input).combine, (*Input).Clone)
	if err != nil {
		return nil, err
	}
	outputs, err := combineVectors(left.Outputs, right.Outputs, (*Output).combine, (*Output).Clone)
	if err != nil {
		return nil, err
	}

	combined := &Inner{
		Global:  *global,
		Inputs:  inputs,
		Outputs: outputs,
	}
	combined.recount()
	return combined, nil
}

// combineVectors pairs the records of left and right by index. The records
// past the end of the shorter vector are cloned unchanged.
func combineVectors[T any](left, right []*T, combine func(*T, *T, int) (*T, error),
	clone func(*T) *T) ([]*T, error) {

	longer, shorter := left, right
	if len(right) > len(left) {
		longer, shorter = right, left
	}

	result := make([]*T, len(longer))
	for i := range longer {
		if i >= len(shorter) {
			result[i] = clone(longer[i])
			continue
		}
		combined, err := combine(left[i], right[i], i)
		if err != nil {
			return nil, err
		}
		result[i] = combined
	}
	return result, nil
}

// combineOptional returns the value set on either side, or ok=false when
// both sides are set to different values.
func combineOptional[T comparable](left, right *T) (result *T, ok bool) {
	switch {
	case left == nil && right == nil:
		return nil, true
	case left == nil:
		value := *right
		return &value, true
	case right == nil || *left == *right:
		value := *left
		return &value, true
	default:
		return nil, false
	}
}

func combineBytes(left, right []byte) (result []byte, ok bool) {
	switch {
	case len(left) == 0:
		return cloneBytes(right), true
	case len(right) == 0 || bytes.Equal(left, right):
		return cloneBytes(left), true
	default:
		return nil, false
	}
}

// combineMaps merges two maps key by key. It returns the first key found
// with different values on both sides together with ok=false.
func combineMaps[K comparable, V any](left, right map[K]V, equal func(V, V) bool,
	clone func(V) V) (result map[K]V, conflictingKey K, ok bool) {

	if len(left) == 0 && len(right) == 0 {
		return nil, conflictingKey, true
	}

	result = make(map[K]V, len(left)+len(right))
	for key, value := range left {
		result[key] = clone(value)
	}
	for key, value := range right {
		existing, found := result[key]
		if found {
			if !equal(existing, value) {
				return nil, key, false
			}
			continue
		}
		result[key] = clone(value)
	}
	return result, conflictingKey, true
}

func combineDerivations(left, right map[PublicKey]*KeySource) (map[PublicKey]*KeySource, PublicKey, bool) {
	return combineMaps(left, right, (*KeySource).Equal, (*KeySource).Clone)
}

func combineProprietaries(left, right map[string][]byte) (map[string][]byte, string, bool) {
	return combineMaps(left, right, bytes.Equal, cloneBytes)
}

func cloneUint64(value *uint64) *uint64 {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneBytes(value []byte) []byte {
	if len(value) == 0 {
		return nil
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	return clone
}

func cloneDerivations(derivations map[PublicKey]*KeySource) map[PublicKey]*KeySource {
	if derivations == nil {
		return nil
	}
	clone := make(map[PublicKey]*KeySource, len(derivations))
	for publicKey, keySource := range derivations {
		clone[publicKey] = keySource.Clone()
	}
	return clone
}

func cloneProprietaries(proprietaries map[string][]byte) map[string][]byte {
	if proprietaries == nil {
		return nil
	}
	clone := make(map[string][]byte, len(proprietaries))
	for key, value := range proprietaries {
		clone[key] = cloneBytes(value)
	}
	return clone
}
