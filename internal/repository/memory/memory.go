// Package memory implements repository.Store in process. It backs the test
// suite and embedded deployments; production uses the mongodb package against
// the same contract.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
)

type entry struct {
	seq int64
	doc pipeline.Doc
}

// collection holds documents with a stable insertion order so paginated reads
// are reproducible.
type collection struct {
	docs *xsync.MapOf[string, entry]
	seq  atomic.Int64
}

func newCollection() *collection {
	return &collection{docs: xsync.NewMapOf[string, entry]()}
}

func (c *collection) put(id string, d pipeline.Doc) {
	c.docs.Store(id, entry{seq: c.seq.Add(1), doc: d})
}

// snapshot returns shallow copies in insertion order; stages may attach new
// top-level keys without touching stored documents.
func (c *collection) snapshot() []pipeline.Doc {
	entries := make([]entry, 0, c.docs.Size())
	c.docs.Range(func(_ string, e entry) bool {
		entries = append(entries, e)
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]pipeline.Doc, len(entries))
	for i, e := range entries {
		out[i] = copyDoc(e.doc)
	}
	return out
}

func copyDoc(d pipeline.Doc) pipeline.Doc {
	cp := make(pipeline.Doc, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

// Store is the in-process document store.
type Store struct {
	users    *collection
	projects *collection
	tasks    *collection
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    newCollection(),
		projects: newCollection(),
		tasks:    newCollection(),
	}
}

func (s *Store) col(c domain.Collection) (*collection, error) {
	switch c {
	case domain.CollectionUsers:
		return s.users, nil
	case domain.CollectionProjects:
		return s.projects, nil
	case domain.CollectionTasks:
		return s.tasks, nil
	}
	return nil, fmt.Errorf("%w: unknown collection %q", repository.ErrNotFound, c)
}

// PutUser stores a user, assigning an id when absent, and returns the id.
// Writes normally come from the CRUD collaborator; these helpers stand in for
// it in tests and embedded runs.
func (s *Store) PutUser(u domain.User) string {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users.put(u.ID, docFromUser(u))
	return u.ID
}

// PutProject stores a project, assigning an id when absent, and returns the id.
func (s *Store) PutProject(p domain.Project) string {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.projects.put(p.ID, docFromProject(p))
	return p.ID
}

// PutTask stores a task, assigning an id when absent, and returns the id.
func (s *Store) PutTask(t domain.Task) string {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tasks.put(t.ID, docFromTask(t))
	return t.ID
}

func (s *Store) findDoc(col domain.Collection, id string) (pipeline.Doc, error) {
	c, err := s.col(col)
	if err != nil {
		return nil, err
	}
	e, ok := c.docs.Load(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyDoc(e.doc), nil
}

// User implements repository.Store.
func (s *Store) User(ctx context.Context, id string) (*domain.User, error) {
	d, err := s.findDoc(domain.CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	u := userFromDoc(d)
	return &u, nil
}

// Project implements repository.Store.
func (s *Store) Project(ctx context.Context, id string) (*domain.Project, error) {
	d, err := s.findDoc(domain.CollectionProjects, id)
	if err != nil {
		return nil, err
	}
	p := projectFromDoc(d)
	return &p, nil
}

// Task implements repository.Store.
func (s *Store) Task(ctx context.Context, id string) (*domain.Task, error) {
	d, err := s.findDoc(domain.CollectionTasks, id)
	if err != nil {
		return nil, err
	}
	t := taskFromDoc(d)
	return &t, nil
}

func (s *Store) findMany(col domain.Collection, q repository.Query) ([]pipeline.Doc, int64, error) {
	c, err := s.col(col)
	if err != nil {
		return nil, 0, err
	}
	matched := make([]pipeline.Doc, 0)
	for _, d := range c.snapshot() {
		if matchesQuery(d, q) {
			matched = append(matched, d)
		}
	}
	total := int64(len(matched))
	start := q.Skip
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

func matchesQuery(d pipeline.Doc, q repository.Query) bool {
	if q.Contains == "" {
		return true
	}
	v, _ := d[q.Field].(string)
	return strings.Contains(strings.ToLower(v), strings.ToLower(q.Contains))
}

// Users implements repository.Store.
func (s *Store) Users(ctx context.Context, q repository.Query) ([]domain.User, int64, error) {
	docs, total, err := s.findMany(domain.CollectionUsers, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, len(docs))
	for i, d := range docs {
		out[i] = userFromDoc(d)
	}
	return out, total, nil
}

// Projects implements repository.Store.
func (s *Store) Projects(ctx context.Context, q repository.Query) ([]domain.Project, int64, error) {
	docs, total, err := s.findMany(domain.CollectionProjects, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Project, len(docs))
	for i, d := range docs {
		out[i] = projectFromDoc(d)
	}
	return out, total, nil
}

// Tasks implements repository.Store.
func (s *Store) Tasks(ctx context.Context, q repository.Query) ([]domain.Task, int64, error) {
	docs, total, err := s.findMany(domain.CollectionTasks, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Task, len(docs))
	for i, d := range docs {
		out[i] = taskFromDoc(d)
	}
	return out, total, nil
}

// Count implements repository.Store.
func (s *Store) Count(ctx context.Context, col domain.Collection, q repository.Query) (int64, error) {
	_, total, err := s.findMany(col, repository.Query{Field: q.Field, Contains: q.Contains})
	return total, err
}

// Exists implements repository.Store.
func (s *Store) Exists(ctx context.Context, col domain.Collection, id string) (bool, error) {
	c, err := s.col(col)
	if err != nil {
		return false, err
	}
	_, ok := c.docs.Load(id)
	return ok, nil
}
