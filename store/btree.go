package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"
	"github.com/iov-one/pkconv/errors"
)

const (
	// DefaultFreeListSize is the size we hold for free node in btree
	DefaultFreeListSize = btree.DefaultFreeListSize

	degree = 2
)

// MemStore is a btree backed store without persistence. It is safe for
// concurrent use.
type MemStore struct {
	mu sync.RWMutex
	bt *btree.BTree
}

var _ CacheableKVStore = (*MemStore)(nil)

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		bt: btree.New(degree),
	}
}

func (s *MemStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := s.bt.Get(bkey{key})
	if res == nil {
		return nil, nil
	}
	item, ok := res.(setItem)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "unknown item in btree: %#v", res)
	}
	return item.value, nil
}

func (s *MemStore) Has(key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bt.Has(bkey{key}), nil
}

// Set stores a copy of the value under the given key.
func (s *MemStore) Set(key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	item := newSetItem(clone(key), clone(value))
	s.mu.Lock()
	s.bt.ReplaceOrInsert(item)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Delete(key []byte) error {
	s.mu.Lock()
	s.bt.Delete(bkey{key})
	s.mu.Unlock()
	return nil
}

// Iterate calls fn outside of the store lock, so fn can modify the store.
// Changes made during the iteration are not visible to it.
func (s *MemStore) Iterate(start, end []byte, fn func(key, value []byte) bool) error {
	s.mu.RLock()
	items := collect(s.bt, start, end)
	s.mu.RUnlock()

	for _, it := range items {
		item, ok := it.(setItem)
		if !ok {
			return errors.Wrapf(errors.ErrHuman, "unknown item in btree: %#v", it)
		}
		if !fn(item.key, item.value) {
			return nil
		}
	}
	return nil
}

// Len returns the number of stored keys.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bt.Len()
}

// CacheWrap returns a cache that can be later written to this store, or
// rolled back.
func (s *MemStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(s, nil)
}

// BTreeCacheWrap places a btree cache over a KVStore. It is safe for
// concurrent use.
type BTreeCacheWrap struct {
	mu   sync.Mutex
	bt   *btree.BTree
	back KVStore
}

var _ KVCacheWrap = (*BTreeCacheWrap)(nil)

// NewBTreeCacheWrap initializes a BTree to cache around this kv store.
//
// free may be nil, but set to an existing list to reuse it for memory
// savings.
func NewBTreeCacheWrap(kv KVStore, free *btree.FreeList) *BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return &BTreeCacheWrap{
		bt:   btree.NewWithFreeList(degree, free),
		back: kv,
	}
}

// Get reads from btree if there, else backing store
func (b *BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	b.mu.Lock()
	res := b.bt.Get(bkey{key})
	b.mu.Unlock()

	if res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrHuman, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Get(key)
}

// Has reads from btree if there, else backing store
func (b *BTreeCacheWrap) Has(key []byte) (bool, error) {
	b.mu.Lock()
	res := b.bt.Get(bkey{key})
	b.mu.Unlock()

	if res != nil {
		switch res.(type) {
		case setItem:
			return true, nil
		case deletedItem:
			return false, nil
		default:
			return false, errors.Wrapf(errors.ErrHuman, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Has(key)
}

// Set writes to the BTree only.
func (b *BTreeCacheWrap) Set(key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	item := newSetItem(clone(key), clone(value))
	b.mu.Lock()
	b.bt.ReplaceOrInsert(item)
	b.mu.Unlock()
	return nil
}

// Delete marks the key as deleted in the BTree only.
func (b *BTreeCacheWrap) Delete(key []byte) error {
	item := newDeletedItem(clone(key))
	b.mu.Lock()
	b.bt.ReplaceOrInsert(item)
	b.mu.Unlock()
	return nil
}

// Iterate combines results from btree and backing store.
func (b *BTreeCacheWrap) Iterate(start, end []byte, fn func(key, value []byte) bool) error {
	b.mu.Lock()
	local := collect(b.bt, start, end)
	b.mu.Unlock()

	var parent []setItem
	err := b.back.Iterate(start, end, func(key, value []byte) bool {
		parent = append(parent, newSetItem(key, value))
		return true
	})
	if err != nil {
		return errors.Wrap(err, "backing store")
	}

	// Merge both ascending lists. Local items shadow parent items with the
	// same key.
	var i, j int
	for i < len(local) || j < len(parent) {
		var item btree.Item
		switch {
		case j == len(parent):
			item = local[i]
			i++
		case i == len(local):
			item = parent[j]
			j++
		default:
			cmp := bytes.Compare(local[i].(keyer).Key(), parent[j].key)
			if cmp <= 0 {
				item = local[i]
				i++
				if cmp == 0 {
					j++
				}
			} else {
				item = parent[j]
				j++
			}
		}

		switch t := item.(type) {
		case setItem:
			if !fn(t.key, t.value) {
				return nil
			}
		case deletedItem:
			continue
		default:
			return errors.Wrapf(errors.ErrHuman, "unknown item in btree: %#v", item)
		}
	}
	return nil
}

// Write syncs with the underlying store, then cleans up.
func (b *BTreeCacheWrap) Write() error {
	b.mu.Lock()
	items := collect(b.bt, nil, nil)
	b.mu.Unlock()

	for _, it := range items {
		var err error
		switch t := it.(type) {
		case setItem:
			err = b.back.Set(t.key, t.value)
		case deletedItem:
			err = b.back.Delete(t.key)
		default:
			err = errors.Wrapf(errors.ErrHuman, "unknown item in btree: %#v", it)
		}
		if err != nil {
			return err
		}
	}
	b.Discard()
	return nil
}

// Discard invalidates this CacheWrap and releases all data
func (b *BTreeCacheWrap) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	// clean up the btree -> freelist
	for stop := false; !stop; {
		rem := b.bt.DeleteMin()
		stop = (rem == nil)
	}
}

// collect returns all items within [start, end) in ascending order. Caller
// must hold the lock guarding bt.
func collect(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	iter := func(i btree.Item) bool {
		items = append(items, i)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(iter)
	case start == nil:
		bt.AscendLessThan(bkey{end}, iter)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, iter)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, iter)
	}
	return items
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

/////////////////////////////////////////////////////////
// Items to write to btree

// we enforce all data in our btree implements keyer so we
// can compare nicely
type keyer interface {
	Key() []byte
}

// bkey implements keyer and btree.Item
// and may be used for queries or embedded in data to store
type bkey struct {
	key []byte
}

var _ keyer = bkey{}
var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff second argument is greater than first
//
// panics if the item to compare doesn't implement keyer.
func (k bkey) Less(item btree.Item) bool {
	cmp := item.(keyer).Key()
	return bytes.Compare(k.key, cmp) < 0
}

type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}

type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey{key}, value}
}
