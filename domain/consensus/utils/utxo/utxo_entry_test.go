package utxo

import (
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
)

func TestUTXOEntry_Equal(t *testing.T) {
	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{0xA1, 0xA2, 0xA3}, Version: 0}
	base := NewUTXOEntry(0xFFFF, scriptPublicKey, true, 0xFFFF)

	tests := []struct {
		name           string
		other          externalapi.UTXOEntry
		expectedResult bool
	}{
		{"identical", NewUTXOEntry(0xFFFF, scriptPublicKey, true, 0xFFFF), true},
		{"amount", NewUTXOEntry(0xFFFE, scriptPublicKey, true, 0xFFFF), false},
		{"script", NewUTXOEntry(0xFFFF, &externalapi.ScriptPublicKey{Script: []byte{0xA1, 0xA0, 0xA3}}, true, 0xFFFF), false},
		{"script version", NewUTXOEntry(0xFFFF, &externalapi.ScriptPublicKey{Script: []byte{0xA1, 0xA2, 0xA3}, Version: 1}, true, 0xFFFF), false},
		{"coinbase", NewUTXOEntry(0xFFFF, scriptPublicKey, false, 0xFFFF), false},
		{"daa score", NewUTXOEntry(0xFFFF, scriptPublicKey, true, 0xFFF0), false},
		{"nil", nil, false},
	}

	for _, test := range tests {
		if result := base.Equal(test.other); result != test.expectedResult {
			t.Fatalf("%s: expected Equal to return %t, got %t", test.name, test.expectedResult, result)
		}
	}
}

func TestUTXOEntryIsImmutable(t *testing.T) {
	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{1, 2, 3}}
	entry := NewUTXOEntry(10, scriptPublicKey, false, 1)

	scriptPublicKey.Script[0] = 0xff
	entry.ScriptPublicKey().Script[1] = 0xff

	if got := entry.ScriptPublicKey().Script; got[0] != 1 || got[1] != 2 {
		t.Fatalf("entry script public key was modified from the outside: %x", got)
	}
}
