// Package seeders fills a fresh store with an administrator and a sample
// catalog. Every seeder is idempotent.
//
//	func init() {
//	    seeders.Register("products", seedProducts)
//	}
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shashiranjanraj/shopease/app/repositories"
	"github.com/shashiranjanraj/shopease/app/services"
)

// Env is what a seeder writes through.
type Env struct {
	Repos    *repositories.Repositories
	Services *services.Services
	Out      io.Writer
}

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, env Env) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order.
// It stops on the first error.
func RunAll(ctx context.Context, env Env) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if env.Out == nil {
		env.Out = io.Discard
	}
	for _, e := range current {
		fmt.Fprintf(env.Out, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, env); err != nil {
			fmt.Fprintln(env.Out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(env.Out, "done")
	}
	return nil
}
