package payload

import "time"

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	ProjectID   string     `json:"project_id"  validate:"required"`
	Title       string     `json:"title"       validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	Type        string     `json:"type"        validate:"omitempty,max=50"`
	Status      string     `json:"status"      validate:"omitempty,max=50"`
	Deadline    *time.Time `json:"deadline"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{taskID}. Absent fields are
// left untouched; only the allow-listed fields appear here at all.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Type        *string    `json:"type"        validate:"omitempty,max=50"`
	Status      *string    `json:"status"      validate:"omitempty,max=50"`
	Deadline    *time.Time `json:"deadline"`
}

// UpdateTaskStatusRequest is the body of PATCH /api/tasks/{taskID}.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

// AddCommentRequest is the body of POST /api/tasks/{taskID}/comments.
type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}
