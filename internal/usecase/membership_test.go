package usecase

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/natthaphonb/taskhub-api/internal/model"
)

func TestEffectiveRole(t *testing.T) {
	creator := bson.NewObjectID()
	editor := bson.NewObjectID()
	stranger := bson.NewObjectID()

	project := &model.Project{
		CreatedBy: creator,
		Collaborators: []model.Collaborator{
			{UserID: editor, Role: model.RoleEditor},
		},
	}

	tests := []struct {
		name     string
		userID   string
		wantRole model.Role
		wantOK   bool
	}{
		{"creator is always admin", creator.Hex(), model.RoleAdmin, true},
		{"collaborator keeps listed role", editor.Hex(), model.RoleEditor, true},
		{"stranger has no role", stranger.Hex(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := EffectiveRole(tt.userID, project)
			if role != tt.wantRole || ok != tt.wantOK {
				t.Errorf("EffectiveRole = (%q, %v), want (%q, %v)", role, ok, tt.wantRole, tt.wantOK)
			}
		})
	}
}

func TestRequireProjectRole(t *testing.T) {
	creator := bson.NewObjectID()
	viewer := bson.NewObjectID()
	admin := bson.NewObjectID()
	stranger := bson.NewObjectID()

	project := &model.Project{
		CreatedBy: creator,
		Collaborators: []model.Collaborator{
			{UserID: viewer, Role: model.RoleViewer},
			{UserID: admin, Role: model.RoleAdmin},
		},
	}

	tests := []struct {
		name    string
		userID  string
		min     model.Role
		wantErr error
	}{
		{"creator passes any threshold", creator.Hex(), model.RoleAdmin, nil},
		{"listed admin passes", admin.Hex(), model.RoleAdmin, nil},
		{"viewer passes viewer threshold", viewer.Hex(), model.RoleViewer, nil},
		{"viewer fails admin threshold", viewer.Hex(), model.RoleAdmin, ErrForbidden},
		{"stranger is told not found", stranger.Hex(), model.RoleViewer, ErrProjectNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireProjectRole(tt.userID, project, tt.min)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RequireProjectRole = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireMembershipSplit(t *testing.T) {
	creator := bson.NewObjectID()
	stranger := bson.NewObjectID()
	project := &model.Project{CreatedBy: creator}

	// Project reads hide existence from strangers, task operations do not.
	if err := RequireProjectMember(stranger.Hex(), project); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("RequireProjectMember = %v, want ErrProjectNotFound", err)
	}
	if err := RequireTaskMember(stranger.Hex(), project); !errors.Is(err, ErrForbidden) {
		t.Errorf("RequireTaskMember = %v, want ErrForbidden", err)
	}
	if err := RequireProjectMember(creator.Hex(), project); err != nil {
		t.Errorf("RequireProjectMember for creator = %v", err)
	}
	if err := RequireTaskMember(creator.Hex(), project); err != nil {
		t.Errorf("RequireTaskMember for creator = %v", err)
	}
}
