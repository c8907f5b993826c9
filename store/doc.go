/*
Package store provides an in memory, ordered key value store and a cache
layer that buffers writes until they are committed.
*/
package store
