// Package mongodb implements repository.Store against MongoDB. Typed pipeline
// stages are compiled to aggregation documents so all joining and grouping
// runs server-side.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
)

// Store reads the three entity collections from a Mongo database.
type Store struct {
	db     *mongo.Database
	logger *slog.Logger
}

// New connects to Mongo and verifies the connection with a ping.
func New(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}
	return &Store{db: client.Database(database), logger: logger}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *Store) collection(c domain.Collection) *mongo.Collection {
	return s.db.Collection(string(c))
}

// storageErr folds driver failures into the contract's sentinel space and
// keeps the detail in the log only.
func (s *Store) storageErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if errors.Is(err, repository.ErrInvalidID) {
		return err
	}
	s.logger.Error("storage operation failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s", repository.ErrUnavailable, op)
}

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"USERNAME"`
	Password string             `bson:"PASSWORD"`
	Email    string             `bson:"EMAIL"`
	Role     string             `bson:"ROLE"`
}

func (d userDoc) domain() domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Email:        d.Email,
		Role:         domain.Role(d.Role),
	}
}

type projectDoc struct {
	ID      primitive.ObjectID   `bson:"_id"`
	Name    string               `bson:"NAME"`
	Tasks   []primitive.ObjectID `bson:"TASKS"`
	Members []primitive.ObjectID `bson:"MEMBERS"`
}

func (d projectDoc) domain() domain.Project {
	return domain.Project{
		ID:      d.ID.Hex(),
		Name:    d.Name,
		TaskIDs: hexIDs(d.Tasks),
		Members: hexIDs(d.Members),
	}
}

type taskDoc struct {
	ID         primitive.ObjectID  `bson:"_id"`
	Title      string              `bson:"TITLE"`
	Status     string              `bson:"STATUS"`
	DueDate    primitive.DateTime  `bson:"DUEDATE"`
	Project    *primitive.ObjectID `bson:"PROJECT,omitempty"`
	AssignedTo *primitive.ObjectID `bson:"ASSIGNEDTO,omitempty"`
}

func (d taskDoc) domain() domain.Task {
	t := domain.Task{
		ID:      d.ID.Hex(),
		Title:   d.Title,
		Status:  domain.TaskStatus(d.Status),
		DueDate: d.DueDate.Time().UTC(),
	}
	if d.Project != nil {
		t.ProjectID = d.Project.Hex()
	}
	if d.AssignedTo != nil {
		t.AssignedTo = d.AssignedTo.Hex()
	}
	return t
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// User implements repository.Store.
func (s *Store) User(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d userDoc
	if err := s.collection(domain.CollectionUsers).FindOne(ctx, bson.M{domain.FieldID: oid}).Decode(&d); err != nil {
		return nil, s.storageErr("users.findOne", err)
	}
	u := d.domain()
	return &u, nil
}

// Project implements repository.Store.
func (s *Store) Project(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d projectDoc
	if err := s.collection(domain.CollectionProjects).FindOne(ctx, bson.M{domain.FieldID: oid}).Decode(&d); err != nil {
		return nil, s.storageErr("projects.findOne", err)
	}
	p := d.domain()
	return &p, nil
}

// Task implements repository.Store.
func (s *Store) Task(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d taskDoc
	if err := s.collection(domain.CollectionTasks).FindOne(ctx, bson.M{domain.FieldID: oid}).Decode(&d); err != nil {
		return nil, s.storageErr("tasks.findOne", err)
	}
	t := d.domain()
	return &t, nil
}

func findOpts(q repository.Query) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: domain.FieldID, Value: 1}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

// Users implements repository.Store.
func (s *Store) Users(ctx context.Context, q repository.Query) ([]domain.User, int64, error) {
	filter := queryFilter(q)
	total, err := s.collection(domain.CollectionUsers).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, s.storageErr("users.count", err)
	}
	cur, err := s.collection(domain.CollectionUsers).Find(ctx, filter, findOpts(q))
	if err != nil {
		return nil, 0, s.storageErr("users.find", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, s.storageErr("users.decode", err)
	}
	out := make([]domain.User, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, total, nil
}

// Projects implements repository.Store.
func (s *Store) Projects(ctx context.Context, q repository.Query) ([]domain.Project, int64, error) {
	filter := queryFilter(q)
	total, err := s.collection(domain.CollectionProjects).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, s.storageErr("projects.count", err)
	}
	cur, err := s.collection(domain.CollectionProjects).Find(ctx, filter, findOpts(q))
	if err != nil {
		return nil, 0, s.storageErr("projects.find", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, s.storageErr("projects.decode", err)
	}
	out := make([]domain.Project, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, total, nil
}

// Tasks implements repository.Store.
func (s *Store) Tasks(ctx context.Context, q repository.Query) ([]domain.Task, int64, error) {
	filter := queryFilter(q)
	total, err := s.collection(domain.CollectionTasks).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, s.storageErr("tasks.count", err)
	}
	cur, err := s.collection(domain.CollectionTasks).Find(ctx, filter, findOpts(q))
	if err != nil {
		return nil, 0, s.storageErr("tasks.find", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, s.storageErr("tasks.decode", err)
	}
	out := make([]domain.Task, len(docs))
	for i, d := range docs {
		out[i] = d.domain()
	}
	return out, total, nil
}

// Count implements repository.Store.
func (s *Store) Count(ctx context.Context, col domain.Collection, q repository.Query) (int64, error) {
	total, err := s.collection(col).CountDocuments(ctx, queryFilter(q))
	if err != nil {
		return 0, s.storageErr(string(col)+".count", err)
	}
	return total, nil
}

// Exists implements repository.Store.
func (s *Store) Exists(ctx context.Context, col domain.Collection, id string) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}
	n, err := s.collection(col).CountDocuments(ctx, bson.M{domain.FieldID: oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, s.storageErr(string(col)+".exists", err)
	}
	return n > 0, nil
}

// Aggregate implements repository.Store.
func (s *Store) Aggregate(ctx context.Context, col domain.Collection, p pipeline.Pipeline) ([]pipeline.Doc, error) {
	compiled, err := translate(p)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, err
		}
		return nil, s.storageErr(string(col)+".aggregate", err)
	}
	cur, err := s.collection(col).Aggregate(ctx, compiled)
	if err != nil {
		return nil, s.storageErr(string(col)+".aggregate", err)
	}
	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, s.storageErr(string(col)+".aggregate", err)
	}
	return normalizeRows(rows), nil
}
