package report

import (
	"time"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
)

// countField names the counter emitted by every Group stage.
const countField = "count"

// Every Group is followed by a Sort on the group key so bucket order is
// reproducible across backends.

func taskCompletionPipeline() pipeline.Pipeline {
	return pipeline.Pipeline{
		pipeline.Group{By: domain.FieldStatus, CountAs: countField},
		pipeline.Sort{By: domain.FieldID},
	}
}

func userPerformancePipeline(assignedTo string) pipeline.Pipeline {
	return pipeline.Pipeline{
		pipeline.Match{Predicates: []pipeline.Predicate{
			pipeline.Eq{Field: domain.FieldAssignedTo, Value: assignedTo},
		}},
		pipeline.Group{By: domain.FieldStatus, CountAs: countField},
		pipeline.Sort{By: domain.FieldID},
	}
}

func overduePipeline(now time.Time) pipeline.Pipeline {
	return pipeline.Pipeline{
		pipeline.Match{Predicates: []pipeline.Predicate{
			pipeline.Lt{Field: domain.FieldDueDate, Value: now},
			pipeline.Ne{Field: domain.FieldStatus, Value: string(domain.StatusCompleted)},
		}},
		pipeline.Group{By: domain.FieldProject, CountAs: countField},
		pipeline.Sort{By: domain.FieldID},
	}
}

func projectStatusPipeline(projectID string) pipeline.Pipeline {
	return pipeline.Pipeline{
		pipeline.Match{Predicates: []pipeline.Predicate{
			pipeline.Eq{Field: domain.FieldProject, Value: projectID},
		}},
		pipeline.Group{By: domain.FieldStatus, CountAs: countField},
		pipeline.Sort{By: domain.FieldID},
	}
}

func memberContributionPipeline(projectID string) pipeline.Pipeline {
	return pipeline.Pipeline{
		pipeline.Match{Predicates: []pipeline.Predicate{
			pipeline.Eq{Field: domain.FieldProject, Value: projectID},
			pipeline.Eq{Field: domain.FieldStatus, Value: string(domain.StatusCompleted)},
		}},
		pipeline.Group{By: domain.FieldAssignedTo, CountAs: "completedTasks"},
		pipeline.Lookup{
			From:         domain.CollectionUsers,
			LocalField:   domain.FieldID,
			ForeignField: domain.FieldID,
			As:           "userInfo",
		},
		pipeline.Unwind{Path: "userInfo"},
		pipeline.Project{Fields: []pipeline.Field{
			{As: "username", From: "userInfo." + domain.FieldUsername},
			{As: "completedTasks"},
		}},
		pipeline.Sort{By: "username"},
	}
}

// projectsWithCountsPipeline counts tasks through the reverse Task.PROJECT
// reference rather than the denormalized Project.TASKS list, which is written
// once at creation and can drift.
func projectsWithCountsPipeline() pipeline.Pipeline {
	return pipeline.Pipeline{
		pipeline.Lookup{
			From:         domain.CollectionUsers,
			LocalField:   domain.FieldMembers,
			ForeignField: domain.FieldID,
			As:           "members",
		},
		pipeline.Lookup{
			From:         domain.CollectionTasks,
			LocalField:   domain.FieldID,
			ForeignField: domain.FieldProject,
			As:           "tasks",
		},
		pipeline.Project{Fields: []pipeline.Field{
			{As: "name", From: domain.FieldName},
			{As: "members"},
			{As: "taskCount", From: "tasks", Size: true},
		}},
		pipeline.Sort{By: "name"},
	}
}

func usersWithCountsPipeline() pipeline.Pipeline {
	return pipeline.Pipeline{
		pipeline.Lookup{
			From:         domain.CollectionTasks,
			LocalField:   domain.FieldID,
			ForeignField: domain.FieldAssignedTo,
			As:           "tasks",
		},
		pipeline.Project{Fields: []pipeline.Field{
			{As: "username", From: domain.FieldUsername},
			{As: "email", From: domain.FieldEmail},
			{As: "role", From: domain.FieldRole},
			{As: "taskCount", From: "tasks", Size: true},
		}},
		pipeline.Sort{By: "username"},
	}
}
