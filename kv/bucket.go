// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/syndtr/goleveldb/leveldb/util"

// Bucket provides logical bucket for a kv store, by prefixing all keys.
type Bucket string

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src GetPutter) GetPutter {
	return &bucketStore{string(b), src}
}

type bucketStore struct {
	prefix string
	src    GetPutter
}

func (s *bucketStore) makeKey(key []byte) []byte {
	return append(append(make([]byte, 0, len(s.prefix)+len(key)), s.prefix...), key...)
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	return s.src.Get(s.makeKey(key))
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	return s.src.Has(s.makeKey(key))
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, value []byte) error {
	return s.src.Put(s.makeKey(key), value)
}

func (s *bucketStore) Delete(key []byte) error {
	return s.src.Delete(s.makeKey(key))
}

func (s *bucketStore) NewBatch() Batch {
	return &bucketBatch{s.prefix, s.src.NewBatch()}
}

func (s *bucketStore) NewIterator(r Range) Iterator {
	r.From = s.makeKey(r.From)
	if len(r.To) == 0 {
		r.To = util.BytesPrefix([]byte(s.prefix)).Limit
	} else {
		r.To = s.makeKey(r.To)
	}
	return &bucketIterator{len(s.prefix), s.src.NewIterator(r)}
}

type bucketBatch struct {
	prefix string
	src    Batch
}

func (b *bucketBatch) Put(key, value []byte) error {
	return b.src.Put(append(append(make([]byte, 0, len(b.prefix)+len(key)), b.prefix...), key...), value)
}

func (b *bucketBatch) Delete(key []byte) error {
	return b.src.Delete(append(append(make([]byte, 0, len(b.prefix)+len(key)), b.prefix...), key...))
}

func (b *bucketBatch) NewBatch() Batch { return &bucketBatch{b.prefix, b.src.NewBatch()} }
func (b *bucketBatch) Len() int        { return b.src.Len() }
func (b *bucketBatch) Write() error    { return b.src.Write() }

type bucketIterator struct {
	skip int
	src  Iterator
}

func (i *bucketIterator) Next() bool    { return i.src.Next() }
func (i *bucketIterator) Release()      { i.src.Release() }
func (i *bucketIterator) Error() error  { return i.src.Error() }
func (i *bucketIterator) Key() []byte   { return i.src.Key()[i.skip:] }
func (i *bucketIterator) Value() []byte { return i.src.Value() }
