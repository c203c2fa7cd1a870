// Package cache provides a byte-budgeted LRU used to keep recently fetched
// snapshot blobs in memory.
package cache
