package pskt

import (
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
)

// Output holds everything the parties know about one output of the
// transaction.
type Output struct {
	Amount          uint64
	ScriptPublicKey *externalapi.ScriptPublicKey

	// RedeemScript is the script a pay-to-script-hash ScriptPublicKey
	// commits to, when known.
	RedeemScript     []byte
	Bip32Derivations map[PublicKey]*KeySource
	Proprietaries    map[string][]byte
}

// NewOutput returns an output paying amount to scriptPublicKey
func NewOutput(amount uint64, scriptPublicKey *externalapi.ScriptPublicKey) *Output {
	return &Output{
		Amount:          amount,
		ScriptPublicKey: scriptPublicKey,
	}
}

// Clone returns a clone of Output
func (output *Output) Clone() *Output {
	clone := &Output{
		Amount:           output.Amount,
		RedeemScript:     cloneBytes(output.RedeemScript),
		Bip32Derivations: cloneDerivations(output.Bip32Derivations),
		Proprietaries:    cloneProprietaries(output.Proprietaries),
	}
	if output.ScriptPublicKey != nil {
		clone.ScriptPublicKey = output.ScriptPublicKey.Clone()
	}
	return clone
}

func (output *Output) combine(other *Output, index int) (*Output, error) {
	conflict := func(field string) error {
		return &CombineError{Scope: ScopeOutput, Index: index, Field: field}
	}

	if output.Amount != other.Amount {
		return nil, conflict("Amount")
	}
	result := &Output{Amount: output.Amount}

	switch {
	case output.ScriptPublicKey == nil:
		if other.ScriptPublicKey != nil {
			result.ScriptPublicKey = other.ScriptPublicKey.Clone()
		}
	case other.ScriptPublicKey == nil || output.ScriptPublicKey.Equal(other.ScriptPublicKey):
		result.ScriptPublicKey = output.ScriptPublicKey.Clone()
	default:
		return nil, conflict("ScriptPublicKey")
	}

	var ok bool
	if result.RedeemScript, ok = combineBytes(output.RedeemScript, other.RedeemScript); !ok {
		return nil, conflict("RedeemScript")
	}

	var conflictingPublicKey PublicKey
	result.Bip32Derivations, conflictingPublicKey, ok = combineDerivations(output.Bip32Derivations,
		other.Bip32Derivations)
	if !ok {
		return nil, conflict("Bip32Derivations[" + conflictingPublicKey.String() + "]")
	}

	var conflictingKey string
	result.Proprietaries, conflictingKey, ok = combineProprietaries(output.Proprietaries, other.Proprietaries)
	if !ok {
		return nil, conflict("Proprietaries[" + conflictingKey + "]")
	}

	return result, nil
}
