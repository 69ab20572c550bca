// Package throughcache implements a bounded, policy-driven cache-aside layer that
// sits in front of one or more backing repositories. The repository is chosen per
// call, so one cache can front several independent stores under the same keys.
//
// Components:
//   - Repository[K, V]: get/put/remove contract over a backing store.
//   - eviction.Policy: picks the victim when the cache is full (LRU by default).
//   - Cache[K, V]: fixed-capacity map with read-through and write-through
//     (or write-behind) semantics against the caller's repository.
//   - Per-key FIFO locks: serialize Execute, Put, Remove and read-through
//     misses for the same key; different keys never block each other.
//
// Compute-and-persist pattern:
//
//	out, err := cache.Execute(ctx, repo, key, input,
//	    func(ctx context.Context, r Repository[string, Book], k string, b Book) (Book, error) {
//	        b.Price += 2
//	        return b, r.Put(ctx, k, b) // transform owns persistence
//	    })
//
// Writes are not rolled back in memory when the repository fails: the cache may
// be ahead of a failed store. Callers see the failure as an *AdapterError.
package throughcache
