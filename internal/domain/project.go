package domain

// Project groups tasks and members.
//
// TaskIDs is denormalized: the CRUD collaborator writes it once at project
// creation and later task mutations do not touch it. Reports that need a
// project's tasks resolve them through Task.ProjectID instead.
type Project struct {
	ID      string   `json:"_id"`
	Name    string   `json:"NAME"`
	TaskIDs []string `json:"TASKS"`
	Members []string `json:"MEMBERS"`
}
