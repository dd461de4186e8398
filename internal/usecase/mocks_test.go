package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/natthaphonb/taskhub-api/internal/auth"
	"github.com/natthaphonb/taskhub-api/internal/config"
	"github.com/natthaphonb/taskhub-api/internal/model"
	"github.com/natthaphonb/taskhub-api/internal/repository"
)

// duplicateKeyErr fabricates the driver error a unique index violation
// produces, so the usecases' IsDuplicateKeyError branches are exercised.
func duplicateKeyErr(index string) error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{
			{
				Code:    11000,
				Message: fmt.Sprintf("E11000 duplicate key error collection: taskhub index: %s dup key", index),
			},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Token: config.TokenConfig{
			Secret:                      "0123456789abcdef0123456789abcdef",
			PasswordResetSecret:         "fedcba9876543210fedcba9876543210",
			Issuer:                      "taskhub-test",
			AccessTokenExpiresIn:        24 * time.Hour,
			PasswordResetTokenExpiresIn: time.Hour,
		},
		OTP:                 config.OTPConfig{ExpiresIn: 10 * time.Minute},
		AppPasswordResetURL: "http://localhost:3000/reset-password",
	}
}

func newTestJWTAuth() auth.JWTAuthenticator {
	cfg := testConfig()
	return auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
}

func newNopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *mockMailer) SendHTML(to []string, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return fmt.Errorf("smtp relay unreachable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, duplicateKeyErr("email_1")
		}
		if u.Username == user.Username {
			return nil, duplicateKeyErr("username_1")
		}
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	m.users[user.ID.Hex()] = &stored
	return user, nil
}

func (m *mockUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.PasswordHash != nil {
		u.PasswordHash = *params.PasswordHash
	}
	if params.Verified != nil {
		u.Verified = *params.Verified
	}
	if params.VerificationCode != nil {
		u.VerificationCode = *params.VerificationCode
	}
	if params.VerificationCodeExpiresAt != nil {
		u.VerificationCodeExpiresAt = *params.VerificationCodeExpiresAt
	}
	if params.ClearVerificationCode {
		u.VerificationCode = ""
		u.VerificationCodeExpiresAt = time.Time{}
	}
	u.UpdatedAt = time.Now()

	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) GetUserSummaries(
	_ context.Context,
	ids []bson.ObjectID,
) (map[string]model.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	summaries := make(map[string]model.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id.Hex()]; ok {
			summaries[id.Hex()] = model.UserSummary{ID: u.ID, FullName: u.FullName, Username: u.Username}
		}
	}
	return summaries, nil
}

// setCodeExpiry rewinds or advances a pending verification code's expiry.
func (m *mockUserRepo) setCodeExpiry(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.VerificationCodeExpiresAt = at
	}
}

func (m *mockUserRepo) storedCode(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u.VerificationCode
	}
	return ""
}

type mockTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.PasswordResetToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*model.PasswordResetToken)}
}

func (m *mockTokenRepo) CreateToken(
	_ context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tokens[token.JTI]; exists {
		return nil, duplicateKeyErr("jti_1")
	}

	now := time.Now()
	token.ID = bson.NewObjectID()
	token.CreatedAt = now
	token.UpdatedAt = now
	token.Used = false

	stored := *token
	m.tokens[token.JTI] = &stored
	return token, nil
}

func (m *mockTokenRepo) GetTokenByJTI(_ context.Context, jti string) (*model.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[jti]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *t
	return &copied, nil
}

func (m *mockTokenRepo) MarkTokenAsUsed(_ context.Context, jti string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tokens[jti]; ok {
		t.Used = true
		t.UpdatedAt = time.Now()
	}
	return nil
}

func (m *mockTokenRepo) InvalidateUserTokens(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.UserID.Hex() == userID && !t.Used {
			t.Used = true
		}
	}
	return nil
}

func (m *mockTokenRepo) expireToken(jti string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[jti]; ok {
		t.ExpiresAt = at
	}
}

func (m *mockTokenRepo) latestJTIFor(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var jti string
	var latest time.Time
	for _, t := range m.tokens {
		if t.UserID.Hex() == userID && !t.Used && t.CreatedAt.After(latest) {
			latest = t.CreatedAt
			jti = t.JTI
		}
	}
	return jti
}

type mockProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*model.Project
	seq      int64
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.Project)}
}

func (m *mockProjectRepo) CreateProject(_ context.Context, project *model.Project) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.projects {
		if p.CreatedBy == project.CreatedBy && p.Title == project.Title {
			return nil, duplicateKeyErr("created_by_1_title_1")
		}
		if project.ShortID != "" && p.ShortID == project.ShortID {
			return nil, duplicateKeyErr("short_id_1")
		}
	}

	// Distinct creation instants keep newest-first ordering deterministic.
	m.seq++
	now := time.Now().Add(time.Duration(m.seq) * time.Microsecond)
	project.ID = bson.NewObjectID()
	project.CreatedAt = now
	project.UpdatedAt = now

	stored := *project
	m.projects[project.ID.Hex()] = &stored
	return project, nil
}

func (m *mockProjectRepo) GetProject(_ context.Context, id string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *p
	return &copied, nil
}

func (m *mockProjectRepo) ListProjectsForUser(_ context.Context, userID string) ([]*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var projects []*model.Project
	for _, p := range m.projects {
		member := p.CreatedBy.Hex() == userID
		for _, c := range p.Collaborators {
			if c.UserID.Hex() == userID {
				member = true
			}
		}
		if member {
			copied := *p
			projects = append(projects, &copied)
		}
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (m *mockProjectRepo) UpdateProject(
	_ context.Context,
	id string,
	params repository.UpdateProjectParams,
) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	// Mirrors the real repository, which refuses an empty update document.
	if params.Title == nil && params.Description == nil && params.RepoLink == nil &&
		params.Type == nil && params.Status == nil && params.Collaborators == nil && params.Boards == nil {
		return nil, errors.New("no project fields to update")
	}

	if params.Title != nil {
		for _, other := range m.projects {
			if other.ID != p.ID && other.CreatedBy == p.CreatedBy && other.Title == *params.Title {
				return nil, duplicateKeyErr("created_by_1_title_1")
			}
		}
		p.Title = *params.Title
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.RepoLink != nil {
		p.RepoLink = *params.RepoLink
	}
	if params.Type != nil {
		p.Type = *params.Type
	}
	if params.Status != nil {
		p.Status = *params.Status
	}
	if params.Collaborators != nil {
		p.Collaborators = append([]model.Collaborator(nil), (*params.Collaborators)...)
	}
	if params.Boards != nil {
		p.Boards = append([]model.Board(nil), (*params.Boards)...)
	}
	p.UpdatedAt = time.Now()

	copied := *p
	return &copied, nil
}

func (m *mockProjectRepo) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.projects, id)
	return nil
}

type mockTaskRepo struct {
	mu       sync.Mutex
	tasks    map[string]*model.Task
	counters map[string]int64
	seq      int64
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{
		tasks:    make(map[string]*model.Task),
		counters: make(map[string]int64),
	}
}

func (m *mockTaskRepo) CreateTask(_ context.Context, task *model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tasks {
		if t.ProjectID == task.ProjectID && t.SerialNumber == task.SerialNumber {
			return nil, duplicateKeyErr("project_id_1_serial_number_1")
		}
	}

	m.seq++
	now := time.Now().Add(time.Duration(m.seq) * time.Microsecond)
	task.ID = bson.NewObjectID()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Comments == nil {
		task.Comments = []model.Comment{}
	}

	stored := *task
	m.tasks[task.ID.Hex()] = &stored
	return task, nil
}

func (m *mockTaskRepo) GetTask(_ context.Context, id string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *t
	return &copied, nil
}

func (m *mockTaskRepo) ListTasksByProject(_ context.Context, projectID string) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tasks []*model.Task
	for _, t := range m.tasks {
		if t.ProjectID.Hex() == projectID {
			copied := *t
			tasks = append(tasks, &copied)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (m *mockTaskRepo) UpdateTask(
	_ context.Context,
	id string,
	params repository.UpdateTaskParams,
) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	// Mirrors the real repository, which refuses an empty update document.
	if params.Title == nil && params.Description == nil && params.Type == nil &&
		params.Status == nil && params.Deadline == nil {
		return nil, errors.New("no task fields to update")
	}

	if params.Title != nil {
		t.Title = *params.Title
	}
	if params.Description != nil {
		t.Description = *params.Description
	}
	if params.Type != nil {
		t.Type = *params.Type
	}
	if params.Status != nil {
		t.Status = *params.Status
	}
	if params.Deadline != nil {
		deadline := *params.Deadline
		t.Deadline = &deadline
	}
	t.UpdatedAt = time.Now()

	copied := *t
	return &copied, nil
}

func (m *mockTaskRepo) AddComment(_ context.Context, id string, comment model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	t.Comments = append(t.Comments, comment)
	t.UpdatedAt = time.Now()
	return nil
}

func (m *mockTaskRepo) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) DeleteTasksByProject(_ context.Context, projectID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, t := range m.tasks {
		if t.ProjectID.Hex() == projectID {
			delete(m.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockTaskRepo) NextSerialNumber(_ context.Context, projectID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[projectID]++
	return m.counters[projectID], nil
}
