package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// Valid reports whether the status is one of the enumerated values.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a unit of work, optionally scoped to a project and assigned to a user.
type Task struct {
	ID         string     `json:"_id"`
	Title      string     `json:"TITLE"`
	Status     TaskStatus `json:"STATUS"`
	DueDate    time.Time  `json:"DUEDATE"`
	ProjectID  string     `json:"PROJECT,omitempty"`
	AssignedTo string     `json:"ASSIGNEDTO,omitempty"`
}
