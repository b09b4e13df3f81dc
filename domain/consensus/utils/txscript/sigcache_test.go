// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"sync"
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
)

// testSigCacheEntry returns a deterministic (sigHash, signature, pubKey)
// triplet built from the given seed.
func testSigCacheEntry(seed byte) (*externalapi.DomainHash, []byte, []byte) {
	sigHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{seed, seed + 1})
	signature := bytes.Repeat([]byte{seed}, signatureSize)
	pubKey := bytes.Repeat([]byte{seed}, schnorrPubKeyLength)
	return sigHash, signature, pubKey
}

// TestSigCacheAddExists tests the ability to add, and later check the
// existence of a signature triplet in the signature cache.
func TestSigCacheAddExists(t *testing.T) {
	sigCache := NewSigCache(200)

	sigHash, signature, pubKey := testSigCacheEntry(1)
	sigCache.Add(sigHash, signature, pubKey, false, true)

	valid, found := sigCache.Lookup(sigHash, signature, pubKey, false)
	if !found || !valid {
		t.Errorf("previously added item not found in signature cache")
	}

	// The same triplet checked as ECDSA is a different entry.
	_, found = sigCache.Lookup(sigHash, signature, pubKey, true)
	if found {
		t.Errorf("a Schnorr entry was returned for an ECDSA lookup")
	}
}

// TestSigCacheRecordsRejections ensures failed verifications are cached as
// such.
func TestSigCacheRecordsRejections(t *testing.T) {
	sigCache := NewSigCache(200)

	sigHash, signature, pubKey := testSigCacheEntry(2)
	sigCache.Add(sigHash, signature, pubKey, true, false)

	valid, found := sigCache.Lookup(sigHash, signature, pubKey, true)
	if !found {
		t.Fatalf("rejected item not found in signature cache")
	}
	if valid {
		t.Fatalf("rejected item was returned as valid")
	}
}

// TestSigCacheAddEvictEntry tests the eviction case where a new signature
// triplet is added to a full shard which should evict its least recently
// used entry.
func TestSigCacheAddEvictEntry(t *testing.T) {
	// One entry per shard.
	sigCache := NewSigCache(sigCacheShardCount)

	// Both hashes start with the same byte, so they land in the same shard.
	sigHash1, signature1, pubKey1 := testSigCacheEntry(16)
	sigHash2, signature2, pubKey2 := testSigCacheEntry(32)

	sigCache.Add(sigHash1, signature1, pubKey1, false, true)
	sigCache.Add(sigHash2, signature2, pubKey2, false, true)

	if _, found := sigCache.Lookup(sigHash1, signature1, pubKey1, false); found {
		t.Errorf("least recently used entry was not evicted")
	}
	if _, found := sigCache.Lookup(sigHash2, signature2, pubKey2, false); !found {
		t.Errorf("newest entry not found in signature cache")
	}
	if sigCache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", sigCache.Len())
	}
}

// TestSigCacheAddMaxEntriesZeroOrNegative tests that if a sigCache is created
// with a max size <= 0, then no entries are added to the sigcache at all.
func TestSigCacheAddMaxEntriesZeroOrNegative(t *testing.T) {
	sigCache := NewSigCache(0)

	sigHash, signature, pubKey := testSigCacheEntry(3)
	sigCache.Add(sigHash, signature, pubKey, false, true)

	if _, found := sigCache.Lookup(sigHash, signature, pubKey, false); found {
		t.Errorf("previously added signature found in sigcache, but " +
			"shouldn't have been")
	}
	if sigCache.Len() != 0 {
		t.Errorf("%v items found in sigcache, no items should have "+
			"been added", sigCache.Len())
	}
}

func TestSigCacheClear(t *testing.T) {
	sigCache := NewSigCache(1000)
	for i := byte(0); i < 50; i++ {
		sigHash, signature, pubKey := testSigCacheEntry(i)
		sigCache.Add(sigHash, signature, pubKey, false, true)
	}
	if sigCache.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", sigCache.Len())
	}

	sigCache.Clear()
	if sigCache.Len() != 0 {
		t.Fatalf("expected an empty cache after Clear, got %d entries", sigCache.Len())
	}
}

func TestSigCacheConcurrentAccess(t *testing.T) {
	sigCache := NewSigCache(1000)

	var wg sync.WaitGroup
	for i := byte(0); i < 32; i++ {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()
			sigHash, signature, pubKey := testSigCacheEntry(seed)
			sigCache.Add(sigHash, signature, pubKey, false, seed%2 == 0)
			valid, found := sigCache.Lookup(sigHash, signature, pubKey, false)
			if !found || valid != (seed%2 == 0) {
				t.Errorf("entry %d: got valid=%t found=%t", seed, valid, found)
			}
		}(i)
	}
	wg.Wait()
}

// TestEngineUsesSigCache ensures that the engine records verification
// results in the cache and that a warm cache gives the same verdicts.
func TestEngineUsesSigCache(t *testing.T) {
	key, publicKey := schnorrKeyFromSeed(t, 7)
	scriptPublicKey, err := PayToPubKey(publicKey)
	if err != nil {
		t.Fatalf("PayToPubKey: %+v", err)
	}

	tx := newSpendingTx(scriptPublicKey, 2)
	for i := range tx.Inputs {
		tx.Inputs[i].SignatureScript, err = SignatureScript(tx, i, consensushashing.SigHashAll, key, nil)
		if err != nil {
			t.Fatalf("SignatureScript: %+v", err)
		}
	}
	// Corrupt the second input.
	tx.Inputs[1].SignatureScript[40] ^= 0x01

	sigCache := NewSigCache(100)
	run := func() []error {
		errs := make([]error, len(tx.Inputs))
		for i := range tx.Inputs {
			errs[i] = executeInput(tx, i, ScriptNoFlags, sigCache)
		}
		return errs
	}

	cold := run()
	if sigCache.Len() != 2 {
		t.Fatalf("expected 2 cached verifications, got %d", sigCache.Len())
	}
	warm := run()
	if sigCache.Len() != 2 {
		t.Fatalf("expected the warm run to reuse the cached verifications, got %d entries", sigCache.Len())
	}

	for i := range tx.Inputs {
		if (cold[i] == nil) != (warm[i] == nil) {
			t.Fatalf("input %d: cold run returned %v, warm run returned %v", i, cold[i], warm[i])
		}
	}
	if cold[0] != nil {
		t.Fatalf("input 0: unexpected error: %+v", cold[0])
	}
	if !IsErrorCode(cold[1], ErrEvalFalse) {
		t.Fatalf("input 1: want ErrEvalFalse, got %v", cold[1])
	}
}
