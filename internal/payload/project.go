package payload

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Title       string `json:"title"       validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	RepoLink    string `json:"repo_link"   validate:"omitempty,url"`
	Type        string `json:"type"        validate:"omitempty,oneof=personal collaborative"`
}

// UpdateProjectRequest is the body of PUT /api/projects/{projectID}. Absent
// fields are left untouched.
type UpdateProjectRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	RepoLink    *string `json:"repo_link"   validate:"omitempty,url"`
	Type        *string `json:"type"        validate:"omitempty,oneof=personal collaborative"`
	Status      *string `json:"status"      validate:"omitempty,oneof=active completed archived"`
}

// AddCollaboratorRequest is the body of POST /api/projects/{projectID}/collaborators.
type AddCollaboratorRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role"    validate:"required,oneof=viewer editor admin"`
}

// UpdateCollaboratorRequest is the body of PUT /api/projects/{projectID}/collaborators/{userID}.
type UpdateCollaboratorRequest struct {
	Role string `json:"role" validate:"required,oneof=viewer editor admin"`
}

// BoardRequest is the body of the board create and rename endpoints.
type BoardRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}
