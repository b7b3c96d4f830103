package domain

// Collection names the three entity collections.
type Collection string

const (
	CollectionUsers    Collection = "users"
	CollectionProjects Collection = "projects"
	CollectionTasks    Collection = "tasks"
)

// Canonical document field names, shared by every storage backend.
const (
	FieldID         = "_id"
	FieldUsername   = "USERNAME"
	FieldPassword   = "PASSWORD"
	FieldEmail      = "EMAIL"
	FieldRole       = "ROLE"
	FieldTitle      = "TITLE"
	FieldStatus     = "STATUS"
	FieldDueDate    = "DUEDATE"
	FieldProject    = "PROJECT"
	FieldAssignedTo = "ASSIGNEDTO"
	FieldName       = "NAME"
	FieldTasks      = "TASKS"
	FieldMembers    = "MEMBERS"
)
