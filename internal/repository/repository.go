// Package repository defines the read contract the reporting core consumes.
// Entities are created and mutated by an external CRUD collaborator; this
// module only ever reads, either directly or through an aggregation pipeline
// pushed down to the backend.
package repository

import (
	"context"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
)

// Query narrows and windows a FindMany or Count call. A zero Query matches
// everything. When Contains is non-empty, only documents whose Field contains
// it case-insensitively match.
type Query struct {
	Skip     int64
	Limit    int64
	Field    string
	Contains string
}

// Store provides typed read access to the three entity collections.
//
// FindMany returns the requested window in a stable order together with the
// total number of matching documents. Aggregate executes the pipeline
// server-side and returns its output rows; an empty result is a valid
// outcome, not an error.
type Store interface {
	User(ctx context.Context, id string) (*domain.User, error)
	Project(ctx context.Context, id string) (*domain.Project, error)
	Task(ctx context.Context, id string) (*domain.Task, error)

	Users(ctx context.Context, q Query) ([]domain.User, int64, error)
	Projects(ctx context.Context, q Query) ([]domain.Project, int64, error)
	Tasks(ctx context.Context, q Query) ([]domain.Task, int64, error)

	Count(ctx context.Context, col domain.Collection, q Query) (int64, error)
	Exists(ctx context.Context, col domain.Collection, id string) (bool, error)
	Aggregate(ctx context.Context, col domain.Collection, p pipeline.Pipeline) ([]pipeline.Doc, error)
}
