// Package handlecache memoizes class/title window lookups.
//
// A lookup key is a platform.Query. On every resolve the cached handle is
// checked for liveness before it is returned; a dead handle is dropped and the
// finder is asked again within the same call. Failed lookups are never cached.
//
// Two shapes are provided:
//
//   - Cache is shared: explicitly constructed, guarded by one mutex, and
//     bounded with least-recently-used eviction. Pass it to every component
//     that needs handle resolution.
//   - Getter is owned by a single caller: an unbounded map with no locking.
//
// # Stale matches
//
// Liveness is the only freshness check. If a resolved window changes its
// title or class while staying alive, resolving the original key keeps
// returning the original handle. Callers rely on this for windows that put
// progress or a "modified" marker in their title bar, so it is kept.
//
// # Handle reuse
//
// The OS may reassign a dead window's handle to an unrelated window. If that
// happens between two resolves, the cache cannot tell and returns the reused
// handle. This is a platform hazard the cache does not try to detect.
package handlecache
