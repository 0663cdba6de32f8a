// Package catalog provides persistent storage for the history of tool runs.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jmgilman/crossfit/internal/runner"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound      = errors.New("entry not found")
	ErrAlreadyExists = errors.New("entry already exists")
	ErrLockTimeout   = errors.New("failed to acquire catalog lock")
)

// Operation names the tool operation a run performed.
type Operation string

const (
	OperationSnapshot Operation = "snapshot"
	OperationMerge    Operation = "merge"
	OperationReport   Operation = "report"
	OperationReset    Operation = "reset"
)

// Entry represents one recorded run.
type Entry struct {
	ID        string        `json:"id"`        // Run name (e.g., "happy-panda")
	Tool      string        `json:"tool"`      // Tool display name
	Operation Operation     `json:"operation"` // Operation performed
	Dir       string        `json:"dir"`       // Working directory of the run
	Log       string        `json:"log"`       // Path of the run's output log (may be empty)
	Result    runner.Result `json:"result"`
	CreatedAt time.Time     `json:"created_at"`
}

// Failed reports whether the run ended with a non-zero code.
func (e Entry) Failed() bool {
	return !e.Result.Succeeded()
}

// ListFilter filters catalog queries.
type ListFilter struct {
	Tool       string    // Filter by tool display name (empty = all)
	Operation  Operation // Filter by operation (empty = all)
	FailedOnly bool      // Only runs with a non-zero code
	Limit      int       // Most recent N entries (0 = all)
}

// Store provides persistent storage for run entries.
type Store interface {
	// Add records a new entry.
	// Returns ErrAlreadyExists if an entry with the same ID exists.
	Add(ctx context.Context, entry Entry) error

	// Get retrieves an entry by ID.
	// Returns ErrNotFound if not found.
	Get(ctx context.Context, id string) (*Entry, error)

	// Remove deletes an entry by ID.
	// Returns ErrNotFound if not found.
	Remove(ctx context.Context, id string) error

	// List returns matching entries, oldest first.
	List(ctx context.Context, filter ListFilter) ([]Entry, error)

	// Clear deletes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
