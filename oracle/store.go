// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/record"
)

var countKey = []byte("count")

// Store is the append-only, block-range-contiguous record sequence.
// Slot 0 holds the sentinel seeded at initialization. Records are only ever
// appended or replaced in place; never deleted.
//
// It is not safe for concurrent use; the Oracle serializes access.
type Store struct {
	store kv.GetPutter
	cache *cache
	count uint64
}

// NewStore opens the record sequence over the given store.
func NewStore(store kv.GetPutter) (*Store, error) {
	s := &Store{
		store: store,
		cache: newCache(512),
	}
	data, err := store.Get(countKey)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, err
		}
	} else {
		s.count = binary.BigEndian.Uint64(data)
	}
	return s, nil
}

// Count returns the current number of records.
func (s *Store) Count() uint64 {
	return s.count
}

// Latest returns the last record. It fails with ErrEmptyStore only before the
// sentinel is seeded.
func (s *Store) Latest() (*record.Record, error) {
	if s.count == 0 {
		return nil, ErrEmptyStore
	}
	return s.At(s.count - 1)
}

// At returns the record at the given index.
func (s *Store) At(index uint64) (*record.Record, error) {
	if index >= s.count {
		return nil, ErrRecordDoesNotExist
	}
	cached, err := s.cache.GetOrLoad(index, func() (any, error) {
		return s.load(index)
	})
	if err != nil {
		return nil, err
	}
	return cached.(*record.Record).Copy(), nil
}

// Append adds the record to the end of the sequence. Except for the sentinel,
// the record's start block must directly follow the last record's end block;
// a gap or overlap fails with ErrStoreDiscontinuity.
func (s *Store) Append(rec *record.Record) error {
	if s.count > 0 {
		prev, err := s.At(s.count - 1)
		if err != nil {
			return err
		}
		if rec.UpdateStartBlock != prev.UpdateEndBlock+1 {
			return ErrStoreDiscontinuity
		}
	}
	if err := s.save(s.count, rec); err != nil {
		return err
	}
	return s.setCount(s.count + 1)
}

// Replace overwrites an existing non-sentinel slot in place.
func (s *Store) Replace(index uint64, rec *record.Record) error {
	if index == 0 {
		return ErrCannotModifyInitialRecord
	}
	if index >= s.count {
		return ErrRecordDoesNotExist
	}
	return s.save(index, rec)
}

func (s *Store) save(index uint64, rec *record.Record) error {
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	if err := s.store.Put(indexKey(index), data); err != nil {
		return err
	}
	s.cache.Add(index, rec.Copy())
	return nil
}

func (s *Store) load(index uint64) (*record.Record, error) {
	data, err := s.store.Get(indexKey(index))
	if err != nil {
		return nil, err
	}
	var rec record.Record
	if err := rlp.DecodeBytes(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) setCount(count uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], count)
	if err := s.store.Put(countKey, b[:]); err != nil {
		return err
	}
	s.count = count
	return nil
}

func indexKey(index uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], index)
	return k[:]
}
