package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the access level a collaborator holds on a project. The creator is
// always treated as an admin, whether or not they appear in the collaborator
// list.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether r grants at least the access level of min.
func (r Role) AtLeast(min Role) bool {
	return roleRanks[r] >= roleRanks[min]
}

// ProjectType distinguishes single-user projects from shared ones.
type ProjectType string

const (
	ProjectTypePersonal      ProjectType = "personal"
	ProjectTypeCollaborative ProjectType = "collaborative"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Collaborator grants a user a role on a project. The list is embedded in the
// project document, so membership checks never leave the project read.
type Collaborator struct {
	UserID bson.ObjectID `bson:"user_id" json:"user_id"`
	Role   Role          `bson:"role"    json:"role"`
}

// Board is a custom task column defined within a project. Its ID is a slug
// derived from the name and is unique within the project.
type Board struct {
	ID   string `bson:"id"   json:"id"`
	Name string `bson:"name" json:"name"`
}

// Project is the unit of collaboration. Titles are unique per creator, and
// the short ID is a compact public alias assigned once at creation.
type Project struct {
	ID            bson.ObjectID  `bson:"_id,omitempty"`
	Title         string         `bson:"title"`
	Description   string         `bson:"description,omitempty"`
	RepoLink      string         `bson:"repo_link,omitempty"`
	Type          ProjectType    `bson:"type"`
	Status        ProjectStatus  `bson:"status"`
	ShortID       string         `bson:"short_id,omitempty"`
	CreatedBy     bson.ObjectID  `bson:"created_by"`
	Collaborators []Collaborator `bson:"collaborators"`
	Boards        []Board        `bson:"boards,omitempty"`
	CreatedAt     time.Time      `bson:"created_at"`
	UpdatedAt     time.Time      `bson:"updated_at"`
}

// Board returns the board with the given slug id, if any.
func (p *Project) Board(id string) (Board, bool) {
	for _, b := range p.Boards {
		if b.ID == id {
			return b, true
		}
	}
	return Board{}, false
}
