package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/natthaphonb/taskhub-api/internal/model"
	"github.com/natthaphonb/taskhub-api/internal/repository"
)

// TaskUsecase defines the business logic for the task registry. Any project
// member may mutate any task; the elevated role is only required for project
// level operations.
type TaskUsecase interface {
	Create(ctx context.Context, userID string, params CreateTaskParams) (*TaskView, error)
	ListByProject(ctx context.Context, userID, projectID string) ([]*TaskView, error)
	Get(ctx context.Context, userID, taskID string) (*TaskView, error)
	Update(ctx context.Context, userID, taskID string, params UpdateTaskFields) (*TaskView, error)
	UpdateStatus(ctx context.Context, userID, taskID, status string) (*TaskView, error)
	Delete(ctx context.Context, userID, taskID string) error
	AddComment(ctx context.Context, userID, taskID, text string) (*CommentView, error)
}

// CreateTaskParams defines the parameters for creating a task.
type CreateTaskParams struct {
	ProjectID   string
	Title       string
	Description string
	Type        string
	Status      string
	Deadline    *time.Time
}

// UpdateTaskFields defines the allow-listed mutable task fields. Only the
// fields that are not nil will be updated.
type UpdateTaskFields struct {
	Title       *string
	Description *string
	Type        *string
	Status      *string
	Deadline    *time.Time
}

// CommentView is a comment with its author resolved to a user summary.
type CommentView struct {
	ID        string            `json:"id"`
	Author    model.UserSummary `json:"author"`
	Text      string            `json:"text"`
	CreatedAt time.Time         `json:"created_at"`
}

// TaskView is the assembled read model of a task.
type TaskView struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"project_id"`
	SerialNumber int64             `json:"serial_number"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Type         string            `json:"type"`
	Status       string            `json:"status"`
	Deadline     *time.Time        `json:"deadline,omitempty"`
	Assignee     model.UserSummary `json:"assignee"`
	Comments     []CommentView     `json:"comments"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrDeadlineInPast  = errors.New("deadline must be in the future")
	ErrInvalidStatus   = errors.New("status must be a builtin status or a board of the project")
	ErrDuplicateSerial = errors.New("could not assign a unique serial number")
)

const (
	defaultTaskType   = "task"
	serialMaxAttempts = 3
)

type taskUsecase struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewTaskUsecase creates a new instance of TaskUsecase.
func NewTaskUsecase(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
) TaskUsecase {
	return &taskUsecase{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

func (u *taskUsecase) Create(ctx context.Context, userID string, params CreateTaskParams) (*TaskView, error) {
	project, err := u.memberProjectForTask(ctx, userID, params.ProjectID)
	if err != nil {
		return nil, err
	}

	assigneeID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	if params.Deadline != nil && !params.Deadline.After(time.Now()) {
		return nil, ErrDeadlineInPast
	}

	taskType := params.Type
	if taskType == "" {
		taskType = defaultTaskType
	}

	status := params.Status
	if status == "" {
		status = model.TaskStatusTodo
	}
	if !validTaskStatus(project, status) {
		return nil, ErrInvalidStatus
	}

	task := &model.Task{
		ProjectID:   project.ID,
		Title:       params.Title,
		Description: params.Description,
		Type:        taskType,
		Status:      status,
		Deadline:    params.Deadline,
		Assignee:    assigneeID,
	}

	// The counter makes collisions all but impossible; the unique index plus
	// this retry loop closes the door on them entirely.
	for attempt := 0; attempt < serialMaxAttempts; attempt++ {
		serial, err := u.taskRepo.NextSerialNumber(ctx, project.ID.Hex())
		if err != nil {
			return nil, err
		}
		task.SerialNumber = serial

		created, err := u.taskRepo.CreateTask(ctx, task)
		if err == nil {
			return u.assembleTask(ctx, created)
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
	}

	return nil, ErrDuplicateSerial
}

func (u *taskUsecase) ListByProject(ctx context.Context, userID, projectID string) ([]*TaskView, error) {
	project, err := u.memberProjectForTask(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	tasks, err := u.taskRepo.ListTasksByProject(ctx, project.ID.Hex())
	if err != nil {
		return nil, err
	}

	return u.assembleTasks(ctx, tasks)
}

func (u *taskUsecase) Get(ctx context.Context, userID, taskID string) (*TaskView, error) {
	task, _, err := u.accessibleTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	return u.assembleTask(ctx, task)
}

func (u *taskUsecase) Update(ctx context.Context, userID, taskID string, params UpdateTaskFields) (*TaskView, error) {
	task, project, err := u.accessibleTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if params.Deadline != nil && !params.Deadline.After(time.Now()) {
		return nil, ErrDeadlineInPast
	}
	if params.Status != nil && !validTaskStatus(project, *params.Status) {
		return nil, ErrInvalidStatus
	}

	// An update with no fields is a no-op, not an error; the store rejects
	// empty update documents.
	if params.Title == nil && params.Description == nil && params.Type == nil &&
		params.Status == nil && params.Deadline == nil {
		return u.assembleTask(ctx, task)
	}

	updated, err := u.taskRepo.UpdateTask(ctx, task.ID.Hex(), repository.UpdateTaskParams{
		Title:       params.Title,
		Description: params.Description,
		Type:        params.Type,
		Status:      params.Status,
		Deadline:    params.Deadline,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return u.assembleTask(ctx, updated)
}

func (u *taskUsecase) UpdateStatus(ctx context.Context, userID, taskID, status string) (*TaskView, error) {
	return u.Update(ctx, userID, taskID, UpdateTaskFields{Status: &status})
}

func (u *taskUsecase) Delete(ctx context.Context, userID, taskID string) error {
	task, _, err := u.accessibleTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if err := u.taskRepo.DeleteTask(ctx, task.ID.Hex()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (u *taskUsecase) AddComment(ctx context.Context, userID, taskID, text string) (*CommentView, error) {
	task, _, err := u.accessibleTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	authorID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		ID:        uuid.NewString(),
		Author:    authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := u.taskRepo.AddComment(ctx, task.ID.Hex(), comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	summaries, err := u.userRepo.GetUserSummaries(ctx, []bson.ObjectID{authorID})
	if err != nil {
		return nil, err
	}

	author, ok := summaries[authorID.Hex()]
	if !ok {
		author = model.UserSummary{ID: authorID}
	}

	return &CommentView{
		ID:        comment.ID,
		Author:    author,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// memberProjectForTask resolves the project a task operation is addressed to.
// Non-members get ErrProjectNotFound, matching the project lookup rules.
func (u *taskUsecase) memberProjectForTask(ctx context.Context, userID, projectID string) (*model.Project, error) {
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

// accessibleTask loads a task addressed by id along with its project. The
// task's existence is already revealed by the 404 check, so a non-member here
// gets ErrForbidden rather than a not-found.
func (u *taskUsecase) accessibleTask(ctx context.Context, userID, taskID string) (*model.Task, *model.Project, error) {
	task, err := u.taskRepo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, err
	}

	project, err := u.projectRepo.GetProject(ctx, task.ProjectID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, err
	}

	if err := RequireTaskMember(userID, project); err != nil {
		return nil, nil, err
	}

	return task, project, nil
}

func validTaskStatus(project *model.Project, status string) bool {
	if model.BuiltinStatus(status) {
		return true
	}
	_, ok := project.Board(status)
	return ok
}

func (u *taskUsecase) assembleTask(ctx context.Context, task *model.Task) (*TaskView, error) {
	views, err := u.assembleTasks(ctx, []*model.Task{task})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// assembleTasks batch-fetches assignee and comment author summaries and
// embeds them in the views.
func (u *taskUsecase) assembleTasks(ctx context.Context, tasks []*model.Task) ([]*TaskView, error) {
	seen := make(map[string]struct{})
	var ids []bson.ObjectID
	collect := func(id bson.ObjectID) {
		if _, ok := seen[id.Hex()]; !ok {
			seen[id.Hex()] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, t := range tasks {
		collect(t.Assignee)
		for _, c := range t.Comments {
			collect(c.Author)
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

	views := make([]*TaskView, 0, len(tasks))
	for _, t := range tasks {
		comments := make([]CommentView, 0, len(t.Comments))
		for _, c := range t.Comments {
			comments = append(comments, CommentView{
				ID:        c.ID,
				Author:    summaryFor(c.Author),
				Text:      c.Text,
				CreatedAt: c.CreatedAt,
			})
		}

		views = append(views, &TaskView{
			ID:           t.ID.Hex(),
			ProjectID:    t.ProjectID.Hex(),
			SerialNumber: t.SerialNumber,
			Title:        t.Title,
			Description:  t.Description,
			Type:         t.Type,
			Status:       t.Status,
			Deadline:     t.Deadline,
			Assignee:     summaryFor(t.Assignee),
			Comments:     comments,
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
		})
	}

	return views, nil
}
