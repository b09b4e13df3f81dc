// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"sync"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/golang/groupcache/lru"
)

const sigCacheShardCount = 16

// sigCacheKey represents an entry in the SigCache. Entries in the sigcache
// are a 4-tuple: (sigHash, signature, pubKey, isECDSA). The public key is
// stored in a fixed size array so the key stays comparable; Schnorr keys use
// the first 32 bytes of it.
type sigCacheKey struct {
	sigHash   externalapi.DomainHash
	signature [signatureSize]byte
	pubKey    [ecdsaPubKeyLength]byte
	isECDSA   bool
}

type sigCacheShard struct {
	sync.Mutex
	entries *lru.Cache
}

// SigCache implements a Schnorr and ECDSA signature verification cache with
// a least-recently-used eviction policy. Both successful and failed
// verifications are recorded, so a signature that was seen once is never
// verified again while it stays in the cache. This mitigates DoS attacks
// that make a victim re-verify the same crafted signatures, and speeds up the
// validation of transactions whose inputs have already been checked.
//
// The cache is split into shards, each guarded by its own lock, so parallel
// script checks rarely contend with each other.
type SigCache struct {
	shards [sigCacheShardCount]*sigCacheShard
}

// NewSigCache creates and initializes a new instance of SigCache. Its sole
// parameter 'maxEntries' represents the maximum number of entries allowed to
// exist in the SigCache at any particular moment. The least recently used
// entries are evicted to make room for new ones. A zero maxEntries disables
// caching.
func NewSigCache(maxEntries uint) *SigCache {
	perShard := int(maxEntries / sigCacheShardCount)
	if maxEntries > 0 && perShard == 0 {
		perShard = 1
	}

	cache := &SigCache{}
	for i := range cache.shards {
		entries := lru.New(perShard)
		if perShard == 0 {
			entries = nil
		}
		cache.shards[i] = &sigCacheShard{entries: entries}
	}
	return cache
}

func newSigCacheKey(sigHash *externalapi.DomainHash, signature []byte, pubKey []byte, isECDSA bool) sigCacheKey {
	key := sigCacheKey{sigHash: *sigHash, isECDSA: isECDSA}
	copy(key.signature[:], signature)
	copy(key.pubKey[:], pubKey)
	return key
}

func (s *SigCache) shardFor(key *sigCacheKey) *sigCacheShard {
	return s.shards[key.sigHash.ByteArray()[0]%sigCacheShardCount]
}

// Lookup returns the recorded verification result of 'signature' over
// 'sigHash' for public key 'pubKey', and whether such a record exists.
//
// NOTE: This function is safe for concurrent access.
func (s *SigCache) Lookup(sigHash *externalapi.DomainHash, signature []byte, pubKey []byte, isECDSA bool) (valid bool, found bool) {
	key := newSigCacheKey(sigHash, signature, pubKey, isECDSA)
	shard := s.shardFor(&key)

	shard.Lock()
	defer shard.Unlock()
	if shard.entries == nil {
		return false, false
	}

	value, ok := shard.entries.Get(key)
	if !ok {
		return false, false
	}
	return value.(bool), true
}

// Add records the verification result of 'signature' over 'sigHash' for
// public key 'pubKey'. In the event that the relevant shard is full, its
// least recently used entry is evicted.
//
// NOTE: This function is safe for concurrent access.
func (s *SigCache) Add(sigHash *externalapi.DomainHash, signature []byte, pubKey []byte, isECDSA bool, valid bool) {
	key := newSigCacheKey(sigHash, signature, pubKey, isECDSA)
	shard := s.shardFor(&key)

	shard.Lock()
	defer shard.Unlock()
	if shard.entries == nil {
		return
	}
	shard.entries.Add(key, valid)
}

// Len returns the number of entries currently held by the cache.
func (s *SigCache) Len() int {
	length := 0
	for _, shard := range s.shards {
		shard.Lock()
		if shard.entries != nil {
			length += shard.entries.Len()
		}
		shard.Unlock()
	}
	return length
}

// Clear removes all entries from the cache.
func (s *SigCache) Clear() {
	for _, shard := range s.shards {
		shard.Lock()
		if shard.entries != nil {
			shard.entries.Clear()
		}
		shard.Unlock()
	}
}
