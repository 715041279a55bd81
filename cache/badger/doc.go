// Package badger provides a BadgerDB-backed implementation of cache.Store.
package badger
