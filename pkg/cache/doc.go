// Package cache provides a small generic key-value cache with TTL expiry,
// used to keep hot tenant lookups off the datastore.
//
// Two backends implement the same interface: an in-memory map for
// single-instance deployments and tests, and a Redis-backed cache so
// multiple service instances observe the same entries and invalidations.
//
//	c := cache.NewMemory[*Tenant](cache.WithDefaultTTL(30 * time.Second))
//	defer c.Close()
//
//	t, err := cache.GetOrSet(ctx, c, "domain:book.example.com", 0, func(ctx context.Context) (*Tenant, error) {
//		return dir.FindByVerifiedDomain(ctx, "book.example.com")
//	})
//
// GetOrSet collapses concurrent misses for the same key into a single
// loader call (singleflight), so a burst of requests for a cold domain
// produces one datastore query.
//
// Invalidation is explicit: Delete removes a key immediately on all
// backends. There is no implicit process-global state; construct a cache
// and hand it to whatever needs it.
package cache
