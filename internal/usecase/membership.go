package usecase

import (
	"errors"

	"github.com/natthaphonb/taskhub-api/internal/model"
)

var (
	// ErrProjectNotFound covers both a genuinely absent project and one the
	// caller is not a member of. Project lookups never reveal which, so a
	// non-member cannot probe for existence.
	ErrProjectNotFound = errors.New("project not found")

	// ErrForbidden means the caller is authenticated and the resource exists,
	// but their role or membership is insufficient for the operation.
	ErrForbidden = errors.New("insufficient permissions")
)

// EffectiveRole resolves the role a user holds on a project. The creator is
// always an admin, listed or not; otherwise the role comes from the embedded
// collaborator entry. The second return is false for non-members.
func EffectiveRole(userID string, project *model.Project) (model.Role, bool) {
	if project.CreatedBy.Hex() == userID {
		return model.RoleAdmin, true
	}

	for _, c := range project.Collaborators {
		if c.UserID.Hex() == userID {
			return c.Role, true
		}
	}

	return "", false
}

// RequireProjectMember gates project reads: non-members get
// ErrProjectNotFound rather than a permission error.
func RequireProjectMember(userID string, project *model.Project) error {
	if _, ok := EffectiveRole(userID, project); !ok {
		return ErrProjectNotFound
	}
	return nil
}

// RequireProjectRole gates project mutations. Non-members still get
// ErrProjectNotFound; members below the threshold get ErrForbidden.
func RequireProjectRole(userID string, project *model.Project, min model.Role) error {
	role, ok := EffectiveRole(userID, project)
	if !ok {
		return ErrProjectNotFound
	}
	if !role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}

// RequireTaskMember gates task operations. Any collaborator may mutate any
// task in the project; non-members get ErrForbidden, since the task itself
// has already been located by id.
func RequireTaskMember(userID string, project *model.Project) error {
	if _, ok := EffectiveRole(userID, project); !ok {
		return ErrForbidden
	}
	return nil
}
