// Package report binds the aggregation engine, cache, and pagination into the
// externally visible reporting operations. Every operation returns an Envelope
// and recovers locally from storage faults.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/cache"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/metrics"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/paging"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
	"github.com/anas6925/Backend-Project-IR-Solutions/pkg/config"
)

// cacheKeyTaskCounts is the single cacheable report's key.
const cacheKeyTaskCounts = "taskCounts"

const (
	msgStorageFault = "Exception Occurred"
	msgInvalidID    = "Invalid identifier"
)

// Service exposes the six derived reports and the paginated list operations.
type Service struct {
	store    repository.Store
	cache    cache.Cache
	logger   *slog.Logger
	cacheTTL time.Duration
	timeout  time.Duration
	now      func() time.Time
}

// New wires a reporting service. The cache is an explicit dependency; there is
// no process-wide cache state.
func New(store repository.Store, c cache.Cache, logger *slog.Logger, cfg config.Config) *Service {
	metrics.Register()
	return &Service{
		store:    store,
		cache:    c,
		logger:   logger,
		cacheTTL: cfg.CacheTTL,
		timeout:  cfg.StorageTimeout,
		now:      time.Now,
	}
}

// storageCtx bounds one storage invocation so a stalled backend surfaces as a
// failure envelope instead of blocking the caller.
func (s *Service) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) aggregate(ctx context.Context, report string, col domain.Collection, p pipeline.Pipeline) ([]pipeline.Doc, error) {
	tctx, cancel := s.storageCtx(ctx)
	defer cancel()
	rows, err := s.store.Aggregate(tctx, col, p)
	if err != nil {
		return nil, err
	}
	metrics.ReportComputed(report)
	return rows, nil
}

// failure maps a storage error onto the envelope taxonomy. Detail stays in the
// log; callers only see a generic message for backend faults.
func (s *Service) failure(op string, err error) Envelope {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return fail(failValidation, msgInvalidID)
	case errors.Is(err, repository.ErrNotFound):
		return fail(failNotFound, op+" Not Found")
	}
	s.logger.Error("report operation failed", "op", op, "error", err)
	return fail(failUnavailable, msgStorageFault)
}

// TaskCompletionSummary groups every task by status. Counts across buckets sum
// to the total task count at the snapshot the pipeline ran against.
func (s *Service) TaskCompletionSummary(ctx context.Context) Envelope {
	rows, err := s.aggregate(ctx, "task_completion_summary", domain.CollectionTasks, taskCompletionPipeline())
	if err != nil {
		return s.failure("Task Completion Summary", err)
	}
	return ok("Task Completion Summary Found", statusCounts(rows), nil)
}

// UserPerformanceReport groups the user's assigned tasks by status. A user
// with no tasks yields the not-found envelope.
func (s *Service) UserPerformanceReport(ctx context.Context, assignedTo string) Envelope {
	rows, err := s.aggregate(ctx, "user_performance_report", domain.CollectionTasks, userPerformancePipeline(assignedTo))
	if err != nil {
		return s.failure("User Performance Report", err)
	}
	if len(rows) == 0 {
		return fail(failNotFound, "User Performance Report Not Found")
	}
	return ok("User Performance Report Found", statusCounts(rows), nil)
}

// OverdueTasksSummary counts past-due, non-completed tasks per project.
// Nothing overdue yields the not-found envelope.
func (s *Service) OverdueTasksSummary(ctx context.Context) Envelope {
	rows, err := s.aggregate(ctx, "overdue_tasks_summary", domain.CollectionTasks, overduePipeline(s.now()))
	if err != nil {
		return s.failure("Overdue Task Summary", err)
	}
	if len(rows) == 0 {
		return fail(failNotFound, "Overdue Task Summary Not Found")
	}
	return ok("Overdue Task Summary Found", overdueCounts(rows), nil)
}

// ProjectTaskSummaryWithMembers returns the project's by-status task counts
// together with completed-task counts per member. The two sub-results come
// from independent pipelines and may observe different snapshots.
func (s *Service) ProjectTaskSummaryWithMembers(ctx context.Context, projectID string) Envelope {
	tctx, cancel := s.storageCtx(ctx)
	_, err := s.store.Project(tctx, projectID)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(failNotFound, "Project not found")
		}
		return s.failure("Project Task Summary", err)
	}

	summaryRows, err := s.aggregate(ctx, "project_task_summary", domain.CollectionTasks, projectStatusPipeline(projectID))
	if err != nil {
		return s.failure("Project Task Summary", err)
	}
	contributionRows, err := s.aggregate(ctx, "project_task_summary", domain.CollectionTasks, memberContributionPipeline(projectID))
	if err != nil {
		return s.failure("Project Task Summary", err)
	}
	data := ProjectTaskSummary{
		TaskSummary:         statusCounts(summaryRows),
		MemberContributions: memberContributions(contributionRows),
	}
	return ok("Project Task Summary Found", data, nil)
}

// ProjectsWithUserTaskCounts lists every project with its member details and
// task count resolved through the reverse task reference.
func (s *Service) ProjectsWithUserTaskCounts(ctx context.Context) Envelope {
	rows, err := s.aggregate(ctx, "projects_with_user_task_counts", domain.CollectionProjects, projectsWithCountsPipeline())
	if err != nil {
		return s.failure("Projects With User Task Counts", err)
	}
	return ok("Projects With User Task Counts Found", projectTaskCounts(rows), nil)
}

// UsersWithTaskCounts lists every user with their assigned task count. The
// result is memoized under the "taskCounts" key for the configured TTL. No
// write anywhere invalidates the entry, so the view may lag storage by up to
// the TTL; concurrent misses may both recompute, last Set wins.
func (s *Service) UsersWithTaskCounts(ctx context.Context) Envelope {
	if raw, hit, err := s.cache.Get(ctx, cacheKeyTaskCounts); err == nil && hit {
		var rows []UserTaskCount
		decodeErr := json.Unmarshal(raw, &rows)
		if decodeErr == nil {
			metrics.CacheHit()
			return ok("Users With Task Counts Found", rows, nil)
		}
		s.logger.Warn("discarding undecodable cache entry", "key", cacheKeyTaskCounts, "error", decodeErr)
	}
	metrics.CacheMiss()

	rows, err := s.aggregate(ctx, "users_with_task_counts", domain.CollectionUsers, usersWithCountsPipeline())
	if err != nil {
		return s.failure("Users With Task Counts", err)
	}
	counts := userTaskCounts(rows)
	if buf, err := json.Marshal(counts); err == nil {
		if err := s.cache.Set(ctx, cacheKeyTaskCounts, buf, s.cacheTTL); err != nil {
			s.logger.Warn("cache write failed", "key", cacheKeyTaskCounts, "error", err)
		}
	}
	return ok("Users With Task Counts Found", counts, nil)
}

// ListUsers returns a page of users filtered case-insensitively on username.
// A page past the end of the data is a success with an empty window and
// accurate totals.
func (s *Service) ListUsers(ctx context.Context, page, limit int, filter string) Envelope {
	pg, bad := s.page(page, limit)
	if bad != nil {
		return *bad
	}
	tctx, cancel := s.storageCtx(ctx)
	defer cancel()
	users, total, err := s.store.Users(tctx, s.query(pg, domain.FieldUsername, filter))
	if err != nil {
		return s.failure("Users", err)
	}
	return ok("Users Found", users, s.meta(pg, total))
}

// ListTasks returns a page of tasks filtered case-insensitively on title.
func (s *Service) ListTasks(ctx context.Context, page, limit int, filter string) Envelope {
	pg, bad := s.page(page, limit)
	if bad != nil {
		return *bad
	}
	tctx, cancel := s.storageCtx(ctx)
	defer cancel()
	tasks, total, err := s.store.Tasks(tctx, s.query(pg, domain.FieldTitle, filter))
	if err != nil {
		return s.failure("Tasks", err)
	}
	return ok("Tasks retrieved successfully", tasks, s.meta(pg, total))
}

// ListProjects returns a page of projects filtered case-insensitively on name.
func (s *Service) ListProjects(ctx context.Context, page, limit int, filter string) Envelope {
	pg, bad := s.page(page, limit)
	if bad != nil {
		return *bad
	}
	tctx, cancel := s.storageCtx(ctx)
	defer cancel()
	projects, total, err := s.store.Projects(tctx, s.query(pg, domain.FieldName, filter))
	if err != nil {
		return s.failure("Projects", err)
	}
	return ok("Projects Found Successfully", projects, s.meta(pg, total))
}

func (s *Service) page(page, limit int) (paging.Page, *Envelope) {
	pg, err := paging.New(page, limit)
	if err != nil {
		env := fail(failValidation, err.Error())
		return paging.Page{}, &env
	}
	return pg, nil
}

func (s *Service) query(pg paging.Page, field, filter string) repository.Query {
	return repository.Query{
		Skip:     pg.Skip(),
		Limit:    int64(pg.Limit),
		Field:    field,
		Contains: filter,
	}
}

func (s *Service) meta(pg paging.Page, total int64) *Meta {
	return &Meta{Total: total, CurrentPage: pg.Number, TotalPages: pg.TotalPages(total)}
}
