// Package token holds the issued session value and its durable stores.
//
// A Session owns the access/refresh token pair exclusively; every consumer
// reads and writes it through a [Store]. Stores are synchronous key/value
// persistence: MemoryStore for tests and throwaway processes, FileStore for
// single-user clients that must survive restarts, RedisStore for headless
// agents sharing a backend cache. Key names are configurable; their
// semantics are fixed.
package token
