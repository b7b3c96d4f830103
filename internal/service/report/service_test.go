package report

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/cache"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/paging"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/memory"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
	"github.com/anas6925/Backend-Project-IR-Solutions/pkg/config"
	"github.com/anas6925/Backend-Project-IR-Solutions/pkg/logger"
)

var (
	testTime = time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	testCfg  = config.Config{CacheTTL: 600 * time.Second, StorageTimeout: 5 * time.Second}
)

func discardLogger() *slog.Logger {
	return logger.New("report", slog.LevelInfo, io.Discard)
}

// countingStore counts aggregation engine invocations so cache behaviour can
// be asserted without peeking into the cache.
type countingStore struct {
	repository.Store
	aggregates int
}

func (c *countingStore) Aggregate(ctx context.Context, col domain.Collection, p pipeline.Pipeline) ([]pipeline.Doc, error) {
	c.aggregates++
	return c.Store.Aggregate(ctx, col, p)
}

type testClock struct {
	now time.Time
}

func (c *testClock) time() time.Time { return c.now }

func newTestService(store repository.Store) (*Service, *testClock) {
	clock := &testClock{now: testTime}
	svc := New(store, cache.NewMemoryWithClock(clock.time), discardLogger(), testCfg)
	svc.now = clock.time
	return svc, clock
}

func TestTaskCompletionSummary(t *testing.T) {
	store := memory.New()
	store.PutTask(domain.Task{Title: "a", Status: domain.StatusCompleted, DueDate: testTime})
	store.PutTask(domain.Task{Title: "b", Status: domain.StatusCompleted, DueDate: testTime})
	store.PutTask(domain.Task{Title: "c", Status: domain.StatusToDo, DueDate: testTime})
	svc, _ := newTestService(store)

	env := svc.TaskCompletionSummary(context.Background())
	if env.Status != StatusSuccess || env.HTTPStatus != http.StatusOK {
		t.Fatalf("unexpected envelope %+v", env)
	}
	want := []StatusCount{{Status: "Completed", Count: 2}, {Status: "To Do", Count: 1}}
	if !reflect.DeepEqual(env.Data, want) {
		t.Fatalf("data = %v, want %v", env.Data, want)
	}
}

func TestTaskCompletionSummaryCountsSumToTotal(t *testing.T) {
	store := memory.New()
	statuses := []domain.TaskStatus{domain.StatusToDo, domain.StatusInProgress, domain.StatusCompleted}
	const total = 17
	for i := 0; i < total; i++ {
		store.PutTask(domain.Task{Title: "t", Status: statuses[i%3], DueDate: testTime})
	}
	svc, _ := newTestService(store)

	env := svc.TaskCompletionSummary(context.Background())
	counts := env.Data.([]StatusCount)
	var sum int64
	for _, c := range counts {
		sum += c.Count
	}
	if sum != total {
		t.Fatalf("counts sum to %d, want %d", sum, total)
	}
}

func TestUserPerformanceReport(t *testing.T) {
	store := memory.New()
	uid := store.PutUser(domain.User{Username: "alice", Email: "a@example.com", Role: domain.RoleMember})
	store.PutTask(domain.Task{Title: "t1", Status: domain.StatusCompleted, DueDate: testTime, AssignedTo: uid})
	store.PutTask(domain.Task{Title: "t2", Status: domain.StatusToDo, DueDate: testTime, AssignedTo: uid})
	store.PutTask(domain.Task{Title: "other", Status: domain.StatusToDo, DueDate: testTime, AssignedTo: "someone-else"})
	svc, _ := newTestService(store)

	env := svc.UserPerformanceReport(context.Background(), uid)
	if env.Status != StatusSuccess {
		t.Fatalf("unexpected envelope %+v", env)
	}
	want := []StatusCount{{Status: "Completed", Count: 1}, {Status: "To Do", Count: 1}}
	if !reflect.DeepEqual(env.Data, want) {
		t.Fatalf("data = %v, want %v", env.Data, want)
	}
}

func TestUserPerformanceReportNoTasksIsNotFound(t *testing.T) {
	store := memory.New()
	uid := store.PutUser(domain.User{Username: "idle", Email: "i@example.com", Role: domain.RoleMember})
	svc, _ := newTestService(store)

	env := svc.UserPerformanceReport(context.Background(), uid)
	if env.Status != StatusFailure || env.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 failure, got %+v", env)
	}
	if data, ok := env.Data.([]any); !ok || len(data) != 0 {
		t.Fatalf("expected empty data array, got %v", env.Data)
	}
}

func TestOverdueTasksSummary(t *testing.T) {
	store := memory.New()
	store.PutTask(domain.Task{Title: "late", Status: domain.StatusToDo, DueDate: testTime.Add(-time.Hour), ProjectID: "p1"})
	store.PutTask(domain.Task{Title: "late too", Status: domain.StatusInProgress, DueDate: testTime.Add(-time.Minute), ProjectID: "p1"})
	// completed in the past must not count as overdue
	store.PutTask(domain.Task{Title: "done late", Status: domain.StatusCompleted, DueDate: testTime.Add(-time.Hour), ProjectID: "p1"})
	store.PutTask(domain.Task{Title: "future", Status: domain.StatusToDo, DueDate: testTime.Add(time.Hour), ProjectID: "p2"})
	svc, _ := newTestService(store)

	env := svc.OverdueTasksSummary(context.Background())
	if env.Status != StatusSuccess {
		t.Fatalf("unexpected envelope %+v", env)
	}
	want := []ProjectOverdueCount{{Project: "p1", Count: 2}}
	if !reflect.DeepEqual(env.Data, want) {
		t.Fatalf("data = %v, want %v", env.Data, want)
	}
}

func TestOverdueTasksSummaryNothingOverdueIsNotFound(t *testing.T) {
	store := memory.New()
	store.PutTask(domain.Task{Title: "future", Status: domain.StatusToDo, DueDate: testTime.Add(time.Hour)})
	svc, _ := newTestService(store)

	env := svc.OverdueTasksSummary(context.Background())
	if env.Status != StatusFailure || env.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 failure, got %+v", env)
	}
}

func TestProjectTaskSummaryWithMembers(t *testing.T) {
	store := memory.New()
	alice := store.PutUser(domain.User{Username: "alice", Email: "a@example.com", Role: domain.RoleMember})
	pid := store.PutProject(domain.Project{Name: "apollo", Members: []string{alice}})
	store.PutTask(domain.Task{Title: "t1", Status: domain.StatusCompleted, DueDate: testTime, ProjectID: pid, AssignedTo: alice})
	store.PutTask(domain.Task{Title: "t2", Status: domain.StatusToDo, DueDate: testTime, ProjectID: pid, AssignedTo: alice})
	svc, _ := newTestService(store)

	env := svc.ProjectTaskSummaryWithMembers(context.Background(), pid)
	if env.Status != StatusSuccess {
		t.Fatalf("unexpected envelope %+v", env)
	}
	data := env.Data.(ProjectTaskSummary)
	wantSummary := []StatusCount{{Status: "Completed", Count: 1}, {Status: "To Do", Count: 1}}
	if !reflect.DeepEqual(data.TaskSummary, wantSummary) {
		t.Fatalf("taskSummary = %v, want %v", data.TaskSummary, wantSummary)
	}
	wantContrib := []MemberContribution{{Username: "alice", CompletedTasks: 1}}
	if !reflect.DeepEqual(data.MemberContributions, wantContrib) {
		t.Fatalf("memberContributions = %v, want %v", data.MemberContributions, wantContrib)
	}
}

func TestProjectTaskSummaryMissingProject(t *testing.T) {
	svc, _ := newTestService(memory.New())
	env := svc.ProjectTaskSummaryWithMembers(context.Background(), "missing")
	if env.Status != StatusFailure || env.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 failure, got %+v", env)
	}
	if env.Message != "Project not found" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestProjectsWithUserTaskCounts(t *testing.T) {
	store := memory.New()
	alice := store.PutUser(domain.User{Username: "alice", Email: "a@example.com", Role: domain.RoleManager})
	bob := store.PutUser(domain.User{Username: "bob", Email: "b@example.com", Role: domain.RoleMember})
	apollo := store.PutProject(domain.Project{Name: "apollo", Members: []string{alice, bob}})
	store.PutProject(domain.Project{Name: "zephyr", Members: []string{bob}})
	store.PutTask(domain.Task{Title: "t1", Status: domain.StatusToDo, DueDate: testTime, ProjectID: apollo})
	store.PutTask(domain.Task{Title: "t2", Status: domain.StatusToDo, DueDate: testTime, ProjectID: apollo})
	svc, _ := newTestService(store)

	env := svc.ProjectsWithUserTaskCounts(context.Background())
	if env.Status != StatusSuccess {
		t.Fatalf("unexpected envelope %+v", env)
	}
	rows := env.Data.([]ProjectTaskCount)
	if len(rows) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(rows))
	}
	if rows[0].Name != "apollo" || rows[0].TaskCount != 2 || len(rows[0].Members) != 2 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[0].Members[0].Username != "alice" || rows[0].Members[0].Role != "Manager" {
		t.Fatalf("unexpected member %+v", rows[0].Members[0])
	}
	if rows[1].Name != "zephyr" || rows[1].TaskCount != 0 || len(rows[1].Members) != 1 {
		t.Fatalf("unexpected second row %+v", rows[1])
	}
}

func TestUsersWithTaskCountsCachesWithinTTL(t *testing.T) {
	base := memory.New()
	uid := base.PutUser(domain.User{Username: "alice", Email: "a@example.com", Role: domain.RoleMember})
	base.PutTask(domain.Task{Title: "t1", Status: domain.StatusToDo, DueDate: testTime, AssignedTo: uid})
	counting := &countingStore{Store: base}
	svc, _ := newTestService(counting)

	first := svc.UsersWithTaskCounts(context.Background())
	if first.Status != StatusSuccess {
		t.Fatalf("unexpected envelope %+v", first)
	}
	if counting.aggregates != 1 {
		t.Fatalf("expected 1 engine run, got %d", counting.aggregates)
	}

	second := svc.UsersWithTaskCounts(context.Background())
	if counting.aggregates != 1 {
		t.Fatalf("cached call re-ran the engine: %d runs", counting.aggregates)
	}
	if !reflect.DeepEqual(first.Data, second.Data) {
		t.Fatalf("cached data differs: %v vs %v", first.Data, second.Data)
	}
}

func TestUsersWithTaskCountsStaleUntilTTL(t *testing.T) {
	base := memory.New()
	uid := base.PutUser(domain.User{Username: "alice", Email: "a@example.com", Role: domain.RoleMember})
	counting := &countingStore{Store: base}
	svc, clock := newTestService(counting)

	env := svc.UsersWithTaskCounts(context.Background())
	if env.Data.([]UserTaskCount)[0].TaskCount != 0 {
		t.Fatalf("unexpected initial count %v", env.Data)
	}

	// a write after caching is not visible until the TTL lapses
	base.PutTask(domain.Task{Title: "new", Status: domain.StatusToDo, DueDate: testTime, AssignedTo: uid})
	env = svc.UsersWithTaskCounts(context.Background())
	if env.Data.([]UserTaskCount)[0].TaskCount != 0 {
		t.Fatalf("cache was invalidated by a write: %v", env.Data)
	}
	if counting.aggregates != 1 {
		t.Fatalf("expected no recomputation inside TTL, got %d runs", counting.aggregates)
	}

	clock.now = clock.now.Add(601 * time.Second)
	env = svc.UsersWithTaskCounts(context.Background())
	if counting.aggregates != 2 {
		t.Fatalf("expected exactly one recomputation after expiry, got %d runs", counting.aggregates)
	}
	if env.Data.([]UserTaskCount)[0].TaskCount != 1 {
		t.Fatalf("recomputed report missing new task: %v", env.Data)
	}
}

func TestUsersWithTaskCountsRecoversFromCorruptCacheEntry(t *testing.T) {
	base := memory.New()
	uid := base.PutUser(domain.User{Username: "alice", Email: "a@example.com", Role: domain.RoleMember})
	base.PutTask(domain.Task{Title: "t1", Status: domain.StatusToDo, DueDate: testTime, AssignedTo: uid})
	counting := &countingStore{Store: base}

	clock := &testClock{now: testTime}
	store := cache.NewMemoryWithClock(clock.time)
	var logBuf bytes.Buffer
	svc := New(counting, store, logger.New("report", slog.LevelInfo, &logBuf), testCfg)
	svc.now = clock.time

	if err := store.Set(context.Background(), "taskCounts", []byte("{not json"), testCfg.CacheTTL); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	env := svc.UsersWithTaskCounts(context.Background())
	if env.Status != StatusSuccess {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if counting.aggregates != 1 {
		t.Fatalf("expected recomputation past the bad entry, got %d runs", counting.aggregates)
	}
	if env.Data.([]UserTaskCount)[0].TaskCount != 1 {
		t.Fatalf("unexpected recomputed data %v", env.Data)
	}
	logged := logBuf.String()
	if !strings.Contains(logged, "discarding undecodable cache entry") {
		t.Fatalf("bad entry was not logged: %s", logged)
	}
	if !strings.Contains(logged, "invalid character") {
		t.Fatalf("decode error missing from log: %s", logged)
	}
}

func TestListUsersPaginates(t *testing.T) {
	store := memory.New()
	for _, name := range []string{"alice", "bob", "carol", "dave", "erin"} {
		store.PutUser(domain.User{Username: name, Email: name + "@example.com", Role: domain.RoleMember})
	}
	svc, _ := newTestService(store)

	env := svc.ListUsers(context.Background(), 2, 2, "")
	if env.Status != StatusSuccess {
		t.Fatalf("unexpected envelope %+v", env)
	}
	users := env.Data.([]domain.User)
	if len(users) != 2 || users[0].Username != "carol" || users[1].Username != "dave" {
		t.Fatalf("unexpected window %+v", users)
	}
	if env.Meta == nil || env.Meta.Total != 5 || env.Meta.CurrentPage != 2 || env.Meta.TotalPages != 3 {
		t.Fatalf("unexpected meta %+v", env.Meta)
	}
}

func TestListUsersFilter(t *testing.T) {
	store := memory.New()
	store.PutUser(domain.User{Username: "Alice", Email: "a@example.com", Role: domain.RoleMember})
	store.PutUser(domain.User{Username: "malice", Email: "m@example.com", Role: domain.RoleMember})
	store.PutUser(domain.User{Username: "bob", Email: "b@example.com", Role: domain.RoleMember})
	svc, _ := newTestService(store)

	env := svc.ListUsers(context.Background(), 1, paging.DefaultLimit, "lic")
	users := env.Data.([]domain.User)
	if len(users) != 2 || env.Meta.Total != 2 {
		t.Fatalf("expected 2 case-insensitive matches, got %+v", env)
	}
}

func TestListPastEndIsEmptySuccess(t *testing.T) {
	store := memory.New()
	store.PutTask(domain.Task{Title: "only", Status: domain.StatusToDo, DueDate: testTime})
	svc, _ := newTestService(store)

	env := svc.ListTasks(context.Background(), 5, 10, "")
	if env.Status != StatusSuccess {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if tasks := env.Data.([]domain.Task); len(tasks) != 0 {
		t.Fatalf("expected empty window, got %+v", tasks)
	}
	if env.Meta.Total != 1 || env.Meta.TotalPages != 1 {
		t.Fatalf("unexpected meta %+v", env.Meta)
	}
}

func TestListRejectsBadBounds(t *testing.T) {
	svc, _ := newTestService(memory.New())

	for _, c := range []struct{ page, limit int }{{0, 10}, {1, 0}, {-1, 10}, {1, -5}} {
		env := svc.ListProjects(context.Background(), c.page, c.limit, "")
		if env.Status != StatusFailure || env.HTTPStatus != http.StatusBadRequest {
			t.Fatalf("page=%d limit=%d: expected 400 failure, got %+v", c.page, c.limit, env)
		}
	}
}

// unavailableStore fails every read with the transient storage sentinel.
type unavailableStore struct{}

func (unavailableStore) User(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrUnavailable
}
func (unavailableStore) Project(context.Context, string) (*domain.Project, error) {
	return nil, repository.ErrUnavailable
}
func (unavailableStore) Task(context.Context, string) (*domain.Task, error) {
	return nil, repository.ErrUnavailable
}
func (unavailableStore) Users(context.Context, repository.Query) ([]domain.User, int64, error) {
	return nil, 0, repository.ErrUnavailable
}
func (unavailableStore) Projects(context.Context, repository.Query) ([]domain.Project, int64, error) {
	return nil, 0, repository.ErrUnavailable
}
func (unavailableStore) Tasks(context.Context, repository.Query) ([]domain.Task, int64, error) {
	return nil, 0, repository.ErrUnavailable
}
func (unavailableStore) Count(context.Context, domain.Collection, repository.Query) (int64, error) {
	return 0, repository.ErrUnavailable
}
func (unavailableStore) Exists(context.Context, domain.Collection, string) (bool, error) {
	return false, repository.ErrUnavailable
}
func (unavailableStore) Aggregate(context.Context, domain.Collection, pipeline.Pipeline) ([]pipeline.Doc, error) {
	return nil, repository.ErrUnavailable
}

func TestStorageFaultIsGeneric500(t *testing.T) {
	svc, _ := newTestService(unavailableStore{})

	for name, env := range map[string]Envelope{
		"completion": svc.TaskCompletionSummary(context.Background()),
		"overdue":    svc.OverdueTasksSummary(context.Background()),
		"cached":     svc.UsersWithTaskCounts(context.Background()),
		"list":       svc.ListUsers(context.Background(), 1, 10, ""),
	} {
		if env.Status != StatusFailure || env.HTTPStatus != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500 failure, got %+v", name, env)
		}
		if env.Message != "Exception Occurred" {
			t.Fatalf("%s: internal detail leaked: %q", name, env.Message)
		}
	}
}
