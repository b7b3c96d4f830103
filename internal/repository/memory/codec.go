package memory

import (
	"time"

	"github.com/anas6925/Backend-Project-IR-Solutions/internal/domain"
	"github.com/anas6925/Backend-Project-IR-Solutions/internal/repository/pipeline"
)

// Entities are held as generic documents keyed by the canonical field names so
// the pipeline evaluator sees the same shapes a document database would store.

func docFromUser(u domain.User) pipeline.Doc {
	return pipeline.Doc{
		domain.FieldID:       u.ID,
		domain.FieldUsername: u.Username,
		domain.FieldPassword: u.PasswordHash,
		domain.FieldEmail:    u.Email,
		domain.FieldRole:     string(u.Role),
	}
}

func userFromDoc(d pipeline.Doc) domain.User {
	return domain.User{
		ID:           docString(d, domain.FieldID),
		Username:     docString(d, domain.FieldUsername),
		PasswordHash: docString(d, domain.FieldPassword),
		Email:        docString(d, domain.FieldEmail),
		Role:         domain.Role(docString(d, domain.FieldRole)),
	}
}

func docFromProject(p domain.Project) pipeline.Doc {
	return pipeline.Doc{
		domain.FieldID:      p.ID,
		domain.FieldName:    p.Name,
		domain.FieldTasks:   append([]string(nil), p.TaskIDs...),
		domain.FieldMembers: append([]string(nil), p.Members...),
	}
}

func projectFromDoc(d pipeline.Doc) domain.Project {
	return domain.Project{
		ID:      docString(d, domain.FieldID),
		Name:    docString(d, domain.FieldName),
		TaskIDs: docStrings(d, domain.FieldTasks),
		Members: docStrings(d, domain.FieldMembers),
	}
}

func docFromTask(t domain.Task) pipeline.Doc {
	d := pipeline.Doc{
		domain.FieldID:      t.ID,
		domain.FieldTitle:   t.Title,
		domain.FieldStatus:  string(t.Status),
		domain.FieldDueDate: t.DueDate,
	}
	if t.ProjectID != "" {
		d[domain.FieldProject] = t.ProjectID
	}
	if t.AssignedTo != "" {
		d[domain.FieldAssignedTo] = t.AssignedTo
	}
	return d
}

func taskFromDoc(d pipeline.Doc) domain.Task {
	t := domain.Task{
		ID:         docString(d, domain.FieldID),
		Title:      docString(d, domain.FieldTitle),
		Status:     domain.TaskStatus(docString(d, domain.FieldStatus)),
		ProjectID:  docString(d, domain.FieldProject),
		AssignedTo: docString(d, domain.FieldAssignedTo),
	}
	if due, ok := d[domain.FieldDueDate].(time.Time); ok {
		t.DueDate = due
	}
	return t
}

func docString(d pipeline.Doc, field string) string {
	s, _ := d[field].(string)
	return s
}

func docStrings(d pipeline.Doc, field string) []string {
	switch v := d[field].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
