package report

import (
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
)

// StatusCount is one bucket of a by-status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ProjectOverdueCount is one bucket of the overdue rollup. Project is the
// project id; tasks without a project bucket under the empty string.
type ProjectOverdueCount struct {
	Project string `json:"project"`
	Count   int64  `json:"count"`
}

// MemberContribution counts completed tasks per project member.
type MemberContribution struct {
	Username       string `json:"username"`
	CompletedTasks int64  `json:"completedTasks"`
}

// ProjectTaskSummary bundles the two independent sub-results of the
// per-project report. Each reflects its own snapshot of storage.
type ProjectTaskSummary struct {
	TaskSummary         []StatusCount        `json:"taskSummary"`
	MemberContributions []MemberContribution `json:"memberContributions"`
}

// MemberInfo is the member detail embedded in project rollups. The password
// hash never leaves the aggregation layer.
type MemberInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ProjectTaskCount is one row of ProjectsWithUserTaskCounts.
type ProjectTaskCount struct {
	Name      string       `json:"name"`
	Members   []MemberInfo `json:"members"`
	TaskCount int64        `json:"taskCount"`
}

// UserTaskCount is one row of UsersWithTaskCounts, the cached report.
type UserTaskCount struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TaskCount int64  `json:"taskCount"`
}

func rowString(d pipeline.Doc, key string) string {
	s, _ := d[key].(string)
	return s
}

func rowInt(d pipeline.Doc, key string) int64 {
	switch v := d[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func rowDocs(d pipeline.Doc, key string) []pipeline.Doc {
	switch v := d[key].(type) {
	case []pipeline.Doc:
		return v
	case []any:
		out := make([]pipeline.Doc, 0, len(v))
		for _, item := range v {
			if doc, ok := item.(pipeline.Doc); ok {
				out = append(out, doc)
			}
		}
		return out
	}
	return nil
}

func statusCounts(rows []pipeline.Doc) []StatusCount {
	out := make([]StatusCount, len(rows))
	for i, r := range rows {
		out[i] = StatusCount{Status: rowString(r, domain.FieldID), Count: rowInt(r, countField)}
	}
	return out
}

func overdueCounts(rows []pipeline.Doc) []ProjectOverdueCount {
	out := make([]ProjectOverdueCount, len(rows))
	for i, r := range rows {
		out[i] = ProjectOverdueCount{Project: rowString(r, domain.FieldID), Count: rowInt(r, countField)}
	}
	return out
}

func memberContributions(rows []pipeline.Doc) []MemberContribution {
	out := make([]MemberContribution, len(rows))
	for i, r := range rows {
		out[i] = MemberContribution{
			Username:       rowString(r, "username"),
			CompletedTasks: rowInt(r, "completedTasks"),
		}
	}
	return out
}

func projectTaskCounts(rows []pipeline.Doc) []ProjectTaskCount {
	out := make([]ProjectTaskCount, len(rows))
	for i, r := range rows {
		memberDocs := rowDocs(r, "members")
		members := make([]MemberInfo, len(memberDocs))
		for j, m := range memberDocs {
			members[j] = MemberInfo{
				Username: rowString(m, domain.FieldUsername),
				Email:    rowString(m, domain.FieldEmail),
				Role:     rowString(m, domain.FieldRole),
			}
		}
		out[i] = ProjectTaskCount{
			Name:      rowString(r, "name"),
			Members:   members,
			TaskCount: rowInt(r, "taskCount"),
		}
	}
	return out
}

func userTaskCounts(rows []pipeline.Doc) []UserTaskCount {
	out := make([]UserTaskCount, len(rows))
	for i, r := range rows {
		out[i] = UserTaskCount{
			Username:  rowString(r, "username"),
			Email:     rowString(r, "email"),
			Role:      rowString(r, "role"),
			TaskCount: rowInt(r, "taskCount"),
		}
	}
	return out
}
