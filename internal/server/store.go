package server

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"sync"

	bolt "go.etcd.io/bbolt"

	"checkctl/internal/grid"
)

// MaxWindow clamps the span of a single range query so one greedy client
// cannot ask for the whole domain in one frame.
const MaxWindow = 100_000

var (
	bucketGrid = []byte("grid")
	keyBits    = []byte("bits")
)

// BitStore is the authority's state: one bit per checkbox, all ten million of
// them resident in memory (about 1.25 MB). Mutations are mirrored to bbolt on
// Flush so state survives restarts.
type BitStore struct {
	mu    sync.RWMutex
	words []uint64
	count int
	dirty bool
	db    *bolt.DB
}

// OpenBitStore loads or creates the store. An empty path keeps the store
// memory-only, which the tests use.
func OpenBitStore(path string) (*BitStore, error) {
	s := &BitStore{words: make([]uint64, (grid.Domain+63)/64)}
	if path == "" {
		return s, nil
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}
	s.db = db
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketGrid)
		if b == nil {
			return nil
		}
		blob := b.Get(keyBits)
		if blob == nil {
			return nil
		}
		for i := 0; i < len(s.words) && (i+1)*8 <= len(blob); i++ {
			s.words[i] = binary.LittleEndian.Uint64(blob[i*8:])
			s.count += bits.OnesCount64(s.words[i])
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Set marks index checked and reports whether the bit changed.
func (s *BitStore) Set(index int) bool {
	if index < 0 || index >= grid.Domain {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	word, mask := index/64, uint64(1)<<(index%64)
	if s.words[word]&mask != 0 {
		return false
	}
	s.words[word] |= mask
	s.count++
	s.dirty = true
	return true
}

// Clear marks index unchecked and reports whether the bit changed.
func (s *BitStore) Clear(index int) bool {
	if index < 0 || index >= grid.Domain {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	word, mask := index/64, uint64(1)<<(index%64)
	if s.words[word]&mask == 0 {
		return false
	}
	s.words[word] &^= mask
	s.count--
	s.dirty = true
	return true
}

// Get reports the bit for index.
func (s *BitStore) Get(index int) bool {
	if index < 0 || index >= grid.Domain {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.words[index/64]&(uint64(1)<<(index%64)) != 0
}

// Count returns the number of checked boxes.
func (s *BitStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Snapshot returns the checked indices inside [start, end), with the span
// clamped to the domain and to MaxWindow.
func (s *BitStore) Snapshot(start, end int) []int {
	if start < 0 {
		start = 0
	}
	if end > grid.Domain {
		end = grid.Domain
	}
	if end > start+MaxWindow {
		end = start + MaxWindow
	}
	if end <= start {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []int
	for i := start; i < end; i++ {
		if s.words[i/64]&(uint64(1)<<(i%64)) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Flush persists the bitset when something changed since the last flush.
func (s *BitStore) Flush() error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	blob := make([]byte, len(s.words)*8)
	for i, w := range s.words {
		binary.LittleEndian.PutUint64(blob[i*8:], w)
	}
	s.dirty = false
	s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketGrid)
		if err != nil {
			return err
		}
		return b.Put(keyBits, blob)
	})
}

// Close flushes and releases the db.
func (s *BitStore) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.Flush(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}
