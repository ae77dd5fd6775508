// Package redis provides the Redis-backed coordination and caching
// pieces: quote cache, per-slot publish locks, and leader election.
// All clients carry metrics and circuit breaker hooks.
package redis
