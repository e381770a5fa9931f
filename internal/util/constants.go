package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// Known RBAC resources and actions. The bootstrap validates every seeded
// permission against these sets to catch typos before they reach the table.
const (
	ResourceAdminPanel      = "admin_panel"
	ResourceUser            = "user"
	ResourceContent         = "content"
	ResourceAnalytics       = "analytics"
	ResourceStudentProgress = "student_progress"
	ResourceExercise        = "exercise"
	ResourceOwnProgress     = "own_progress"
)

const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionUpdate = "update"
)

var KnownResources = map[string]bool{
	ResourceAdminPanel:      true,
	ResourceUser:            true,
	ResourceContent:         true,
	ResourceAnalytics:       true,
	ResourceStudentProgress: true,
	ResourceExercise:        true,
	ResourceOwnProgress:     true,
}

var KnownActions = map[string]bool{
	ActionRead:   true,
	ActionWrite:  true,
	ActionUpdate: true,
}
