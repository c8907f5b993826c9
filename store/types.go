package store

// ReadOnlyKVStore is a read only view of a key value store. Returned values
// must not be modified by the caller.
type ReadOnlyKVStore interface {
	// Get returns nil if the key does not exist.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Iterate calls fn for every key within [start, end) in ascending order.
	// A nil start or end leaves that side of the range open. Iteration stops
	// when fn returns false.
	Iterate(start, end []byte, fn func(key, value []byte) bool) error
}

// KVStore is a key value store.
type KVStore interface {
	ReadOnlyKVStore
	Set(key, value []byte) error
	Delete(key []byte) error
}

// CacheableKVStore is a store that can buffer changes.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers all changes in memory until they are written to the
// underlying store or discarded.
type KVCacheWrap interface {
	KVStore
	// Write applies all buffered changes to the underlying store and
	// clears the buffer.
	Write() error
	// Discard drops all buffered changes.
	Discard()
}
