package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/natthaphonb/taskhub-api/internal/model"
	"github.com/natthaphonb/taskhub-api/internal/repository"
	"github.com/natthaphonb/taskhub-api/internal/security"
)

// ProjectUsecase defines the business logic for the project registry. Every
// mutation is gated by the membership resolver: reads need membership,
// create/update/delete and the embedded-list operations need an admin role.
type ProjectUsecase interface {
	Create(ctx context.Context, userID string, params CreateProjectParams) (*ProjectView, error)
	List(ctx context.Context, userID string) ([]*ProjectView, error)
	Get(ctx context.Context, userID, projectID string) (*ProjectView, error)
	Update(ctx context.Context, userID, projectID string, params UpdateProjectFields) (*ProjectView, error)
	Delete(ctx context.Context, userID, projectID string) error

	AddCollaborator(ctx context.Context, userID, projectID, memberID string, role model.Role) (*ProjectView, error)
	UpdateCollaboratorRole(ctx context.Context, userID, projectID, memberID string, role model.Role) (*ProjectView, error)
	RemoveCollaborator(ctx context.Context, userID, projectID, memberID string) (*ProjectView, error)

	AddBoard(ctx context.Context, userID, projectID, name string) (*ProjectView, error)
	RenameBoard(ctx context.Context, userID, projectID, boardID, name string) (*ProjectView, error)
	RemoveBoard(ctx context.Context, userID, projectID, boardID string) (*ProjectView, error)
}

// CreateProjectParams defines the parameters for creating a project.
type CreateProjectParams struct {
	Title       string
	Description string
	RepoLink    string
	Type        model.ProjectType
}

// UpdateProjectFields defines the allow-listed mutable project fields. Only
// the fields that are not nil will be updated.
type UpdateProjectFields struct {
	Title       *string
	Description *string
	RepoLink    *string
	Type        *model.ProjectType
	Status      *model.ProjectStatus
}

// CollaboratorView pairs a collaborator's role with the resolved user
// summary for read-side responses.
type CollaboratorView struct {
	User model.UserSummary `json:"user"`
	Role model.Role        `json:"role"`
}

// ProjectView is the assembled read model of a project: referenced users are
// batch-fetched and embedded as summaries.
type ProjectView struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	RepoLink      string              `json:"repo_link,omitempty"`
	Type          model.ProjectType   `json:"type"`
	Status        model.ProjectStatus `json:"status"`
	ShortID       string              `json:"short_id,omitempty"`
	CreatedBy     model.UserSummary   `json:"created_by"`
	Collaborators []CollaboratorView  `json:"collaborators"`
	Boards        []model.Board       `json:"boards"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

var (
	ErrDuplicateTitle       = errors.New("a project with this title already exists")
	ErrInvalidRepoLink      = errors.New("repository link must be a GitHub URL")
	ErrInvalidRole          = errors.New("unknown collaborator role")
	ErrAlreadyCollaborator  = errors.New("user is already a collaborator")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrCannotRemoveCreator  = errors.New("the project creator cannot be removed")
	ErrDuplicateBoard       = errors.New("a board with this name already exists")
	ErrBoardNotFound        = errors.New("board not found")
	ErrInvalidBoardName     = errors.New("board name must contain at least one character")
)

const (
	githubURLPrefix = "https://github.com/"

	shortIDLength      = 8
	shortIDMaxAttempts = 5
)

type projectUsecase struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
}

// NewProjectUsecase creates a new instance of ProjectUsecase.
func NewProjectUsecase(
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
) ProjectUsecase {
	return &projectUsecase{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
	}
}

func (u *projectUsecase) Create(ctx context.Context, userID string, params CreateProjectParams) (*ProjectView, error) {
	creatorID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	if params.RepoLink != "" && !strings.HasPrefix(params.RepoLink, githubURLPrefix) {
		return nil, ErrInvalidRepoLink
	}

	projectType := params.Type
	if projectType == "" {
		projectType = model.ProjectTypePersonal
	}

	project := &model.Project{
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		RepoLink:    params.RepoLink,
		Type:        projectType,
		Status:      model.ProjectStatusActive,
		CreatedBy:   creatorID,
		Collaborators: []model.Collaborator{
			{UserID: creatorID, Role: model.RoleAdmin},
		},
		Boards: []model.Board{},
	}

	// The short id comes from a random generator, not a hash of anything, so
	// a collision is possible and handled by regenerating against the unique
	// sparse index.
	for attempt := 0; attempt < shortIDMaxAttempts; attempt++ {
		shortID, err := security.GenerateShortID(shortIDLength)
		if err != nil {
			return nil, err
		}
		project.ShortID = shortID

		created, err := u.projectRepo.CreateProject(ctx, project)
		if err == nil {
			return u.assembleProject(ctx, created)
		}

		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "short_id") {
				continue
			}
			return nil, ErrDuplicateTitle
		}

		return nil, err
	}

	return nil, errors.New("exhausted short id generation attempts")
}

func (u *projectUsecase) List(ctx context.Context, userID string) ([]*ProjectView, error) {
	projects, err := u.projectRepo.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return u.assembleProjects(ctx, projects)
}

func (u *projectUsecase) Get(ctx context.Context, userID, projectID string) (*ProjectView, error) {
	project, err := u.memberProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	return u.assembleProject(ctx, project)
}

func (u *projectUsecase) Update(
	ctx context.Context,
	userID, projectID string,
	params UpdateProjectFields,
) (*ProjectView, error) {
	project, err := u.adminProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if params.RepoLink != nil && *params.RepoLink != "" && !strings.HasPrefix(*params.RepoLink, githubURLPrefix) {
		return nil, ErrInvalidRepoLink
	}

	// An update with no fields is a no-op, not an error; the store rejects
	// empty update documents.
	if params.Title == nil && params.Description == nil && params.RepoLink == nil &&
		params.Type == nil && params.Status == nil {
		return u.assembleProject(ctx, project)
	}

	updated, err := u.projectRepo.UpdateProject(ctx, project.ID.Hex(), repository.UpdateProjectParams{
		Title:       params.Title,
		Description: params.Description,
		RepoLink:    params.RepoLink,
		Type:        params.Type,
		Status:      params.Status,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateTitle
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	return u.assembleProject(ctx, updated)
}

// Delete removes the project and explicitly cascades to its tasks through the
// task registry's bulk delete. There is no store-level cascade.
func (u *projectUsecase) Delete(ctx context.Context, userID, projectID string) error {
	project, err := u.adminProject(ctx, userID, projectID)
	if err != nil {
		return err
	}

	if err := u.projectRepo.DeleteProject(ctx, project.ID.Hex()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProjectNotFound
		}
		return err
	}

	_, err = u.taskRepo.DeleteTasksByProject(ctx, project.ID.Hex())
	return err
}

func (u *projectUsecase) AddCollaborator(
	ctx context.Context,
	userID, projectID, memberID string,
	role model.Role,
) (*ProjectView, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	project, err := u.adminProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	member, err := u.userRepo.GetUser(ctx, memberID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if project.CreatedBy == member.ID {
		return nil, ErrAlreadyCollaborator
	}
	for _, c := range project.Collaborators {
		if c.UserID == member.ID {
			return nil, ErrAlreadyCollaborator
		}
	}

	collaborators := append(project.Collaborators, model.Collaborator{UserID: member.ID, Role: role})

	return u.replaceCollaborators(ctx, project, collaborators)
}

func (u *projectUsecase) UpdateCollaboratorRole(
	ctx context.Context,
	userID, projectID, memberID string,
	role model.Role,
) (*ProjectView, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	project, err := u.adminProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	found := false
	collaborators := make([]model.Collaborator, len(project.Collaborators))
	for i, c := range project.Collaborators {
		if c.UserID.Hex() == memberID {
			c.Role = role
			found = true
		}
		collaborators[i] = c
	}
	if !found {
		return nil, ErrCollaboratorNotFound
	}

	return u.replaceCollaborators(ctx, project, collaborators)
}

func (u *projectUsecase) RemoveCollaborator(
	ctx context.Context,
	userID, projectID, memberID string,
) (*ProjectView, error) {
	project, err := u.adminProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if project.CreatedBy.Hex() == memberID {
		return nil, ErrCannotRemoveCreator
	}

	collaborators := make([]model.Collaborator, 0, len(project.Collaborators))
	found := false
	for _, c := range project.Collaborators {
		if c.UserID.Hex() == memberID {
			found = true
			continue
		}
		collaborators = append(collaborators, c)
	}
	if !found {
		return nil, ErrCollaboratorNotFound
	}

	return u.replaceCollaborators(ctx, project, collaborators)
}

func (u *projectUsecase) AddBoard(ctx context.Context, userID, projectID, name string) (*ProjectView, error) {
	project, err := u.adminProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	slug := slugify(name)
	if slug == "" {
		return nil, ErrInvalidBoardName
	}
	if _, exists := project.Board(slug); exists {
		return nil, ErrDuplicateBoard
	}

	boards := append(project.Boards, model.Board{ID: slug, Name: strings.TrimSpace(name)})

	return u.replaceBoards(ctx, project, boards)
}

// RenameBoard changes a board's display name. The slug id stays stable so
// task statuses referencing it remain valid.
func (u *projectUsecase) RenameBoard(
	ctx context.Context,
	userID, projectID, boardID, name string,
) (*ProjectView, error) {
	project, err := u.adminProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidBoardName
	}

	found := false
	boards := make([]model.Board, len(project.Boards))
	for i, b := range project.Boards {
		if b.ID == boardID {
			b.Name = strings.TrimSpace(name)
			found = true
		}
		boards[i] = b
	}
	if !found {
		return nil, ErrBoardNotFound
	}

	return u.replaceBoards(ctx, project, boards)
}

func (u *projectUsecase) RemoveBoard(ctx context.Context, userID, projectID, boardID string) (*ProjectView, error) {
	project, err := u.adminProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	boards := make([]model.Board, 0, len(project.Boards))
	found := false
	for _, b := range project.Boards {
		if b.ID == boardID {
			found = true
			continue
		}
		boards = append(boards, b)
	}
	if !found {
		return nil, ErrBoardNotFound
	}

	return u.replaceBoards(ctx, project, boards)
}

// memberProject loads a project and hides it from non-members.
func (u *projectUsecase) memberProject(ctx context.Context, userID, projectID string) (*model.Project, error) {
	project, err := u.projectRepo.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if err := RequireProjectMember(userID, project); err != nil {
		return nil, err
	}

	return project, nil
}

// adminProject loads a project and requires the elevated role used by all
// project mutations.
func (u *projectUsecase) adminProject(ctx context.Context, userID, projectID string) (*model.Project, error) {
	project, err := u.projectRepo.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if err := RequireProjectRole(userID, project, model.RoleAdmin); err != nil {
		return nil, err
	}

	return project, nil
}

func (u *projectUsecase) replaceCollaborators(
	ctx context.Context,
	project *model.Project,
	collaborators []model.Collaborator,
) (*ProjectView, error) {
	updated, err := u.projectRepo.UpdateProject(ctx, project.ID.Hex(), repository.UpdateProjectParams{
		Collaborators: &collaborators,
	})
	if err != nil {
		return nil, err
	}

	return u.assembleProject(ctx, updated)
}

func (u *projectUsecase) replaceBoards(
	ctx context.Context,
	project *model.Project,
	boards []model.Board,
) (*ProjectView, error) {
	updated, err := u.projectRepo.UpdateProject(ctx, project.ID.Hex(), repository.UpdateProjectParams{
		Boards: &boards,
	})
	if err != nil {
		return nil, err
	}

	return u.assembleProject(ctx, updated)
}

func (u *projectUsecase) assembleProject(ctx context.Context, project *model.Project) (*ProjectView, error) {
	views, err := u.assembleProjects(ctx, []*model.Project{project})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// assembleProjects is the read-side join: it batch-fetches the user summaries
// referenced by the given projects and embeds them in the views.
func (u *projectUsecase) assembleProjects(ctx context.Context, projects []*model.Project) ([]*ProjectView, error) {
	seen := make(map[string]struct{})
	var ids []bson.ObjectID
	collect := func(id bson.ObjectID) {
		if _, ok := seen[id.Hex()]; !ok {
			seen[id.Hex()] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, p := range projects {
		collect(p.CreatedBy)
		for _, c := range p.Collaborators {
			collect(c.UserID)
		}
	}

	summaries, err := u.userRepo.GetUserSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaryFor := func(id bson.ObjectID) model.UserSummary {
		if s, ok := summaries[id.Hex()]; ok {
			return s
		}
		return model.UserSummary{ID: id}
	}

	views := make([]*ProjectView, 0, len(projects))
	for _, p := range projects {
		collaborators := make([]CollaboratorView, 0, len(p.Collaborators))
		for _, c := range p.Collaborators {
			collaborators = append(collaborators, CollaboratorView{
				User: summaryFor(c.UserID),
				Role: c.Role,
			})
		}

		boards := p.Boards
		if boards == nil {
			boards = []model.Board{}
		}

		views = append(views, &ProjectView{
			ID:            p.ID.Hex(),
			Title:         p.Title,
			Description:   p.Description,
			RepoLink:      p.RepoLink,
			Type:          p.Type,
			Status:        p.Status,
			ShortID:       p.ShortID,
			CreatedBy:     summaryFor(p.CreatedBy),
			Collaborators: collaborators,
			Boards:        boards,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		})
	}

	return views, nil
}

// slugify derives a board id from its name: lowercase with whitespace runs
// collapsed to single hyphens.
func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
