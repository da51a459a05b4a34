package labels

import (
	"encoding/binary"
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/skadi-tools/paramkit/pkg/hash40"
)

// Key prefixes for the two index directions.
const (
	prefixHash = 'h' // hash → name
	prefixName = 'n' // name → hash
)

// Store is a persistent label dictionary backed by pebble. It keeps both
// lookup directions so renamed labels can be mapped back to their hashes
// without rehashing. Store implements hash40.ReverseTable.
type Store struct {
	db *pebble.DB
}

// OpenStore opens (or creates) a label store at path.
func OpenStore(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Put records a hash/name pair in both directions.
func (s *Store) Put(h hash40.Hash40, name string) error {
	if err := s.db.Set(hashKey(h), []byte(name), pebble.NoSync); err != nil {
		return err
	}
	return s.db.Set(nameKey(name), hashValue(h), pebble.NoSync)
}

// Import loads every entry of an in-memory table in one batch.
func (s *Store) Import(table hash40.MapTable) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	for h, name := range table {
		if err := batch.Set(hashKey(h), []byte(name), nil); err != nil {
			return err
		}
		if err := batch.Set(nameKey(name), hashValue(h), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

// Lookup implements hash40.Table.
func (s *Store) Lookup(h hash40.Hash40) (string, bool) {
	data, closer, err := s.db.Get(hashKey(h))
	if err != nil {
		return "", false
	}
	name := string(data)
	_ = closer.Close()
	return name, true
}

// ReverseLookup implements hash40.ReverseTable.
func (s *Store) ReverseLookup(name string) (hash40.Hash40, bool) {
	data, closer, err := s.db.Get(nameKey(name))
	if err != nil || len(data) != 8 {
		if err == nil {
			_ = closer.Close()
		}
		return 0, false
	}
	h := hash40.Hash40(binary.LittleEndian.Uint64(data))
	_ = closer.Close()
	return h, true
}

// Delete removes a hash and its name from both directions.
func (s *Store) Delete(h hash40.Hash40) error {
	name, ok := s.Lookup(h)
	if !ok {
		return nil
	}
	if err := s.db.Delete(hashKey(h), pebble.NoSync); err != nil {
		return err
	}
	return s.db.Delete(nameKey(name), pebble.NoSync)
}

// Snapshot copies every forward entry into an in-memory table, for use
// as an immutable snapshot during codec operations.
func (s *Store) Snapshot() (hash40.MapTable, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{prefixHash},
		UpperBound: []byte{prefixHash + 1},
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	table := hash40.MapTable{}
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != 9 {
			continue
		}
		h := hash40.Hash40(binary.LittleEndian.Uint64(key[1:]))
		value, err := iter.ValueAndErr()
		if err != nil {
			return nil, err
		}
		table[h] = string(value)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return table, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil && !errors.Is(err, pebble.ErrClosed) {
		return err
	}
	return nil
}

func hashKey(h hash40.Hash40) []byte {
	key := make([]byte, 9)
	key[0] = prefixHash
	binary.LittleEndian.PutUint64(key[1:], uint64(h))
	return key
}

func nameKey(name string) []byte {
	key := make([]byte, 1+len(name))
	key[0] = prefixName
	copy(key[1:], name)
	return key
}

func hashValue(h hash40.Hash40) []byte {
	v := make([]byte, 8)
	binary.LittleEndian.PutUint64(v, uint64(h))
	return v
}
