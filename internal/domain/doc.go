// Package domain holds the core types and interfaces of the blogging bot.
// It has no dependencies on infrastructure packages; collectors, stores and
// publishers implement the interfaces defined here.
package domain
