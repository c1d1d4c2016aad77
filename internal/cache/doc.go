// Package cache provides the memo table behind shared dithering assets.
//
// # Memo[K, V]
//
// A thread-safe table that creates each key at most once. Creation runs
// under the table lock, so concurrent first requests for one key share a
// single computation:
//
//	m := cache.New[Key, *Future]()
//	f, hit := m.GetOrCreate(key, func() *Future { return start(key) })
//
// Entries live until forgotten. ForgetFunc drops an entry only while it
// still holds a given value, which lets a caller discard a failed result
// without racing a replacement.
//
// # Thread Safety
//
// Memo is safe for concurrent use and must not be copied after creation.
package cache
