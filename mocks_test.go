package auth_test

import (
	"context"
	"database/sql"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockUsers implements auth.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, email, displayName, plainPassword string) (*auth.User, error) {
	args := m.Called(ctx, email, displayName, plainPassword)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, email, displayName, plainPassword string) (*auth.User, error) {
	args := m.Called(ctx, tx, email, displayName, plainPassword)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockWorkspaces implements auth.Workspaces
type MockWorkspaces struct {
	mock.Mock
}

func (m *MockWorkspaces) GetBySlug(ctx context.Context, slug string) (*auth.Workspace, error) {
	args := m.Called(ctx, slug)
	workspace, _ := args.Get(0).(*auth.Workspace)
	return workspace, args.Error(1)
}

func (m *MockWorkspaces) GetByID(ctx context.Context, id int64) (*auth.Workspace, error) {
	args := m.Called(ctx, id)
	workspace, _ := args.Get(0).(*auth.Workspace)
	return workspace, args.Error(1)
}

func (m *MockWorkspaces) ForUser(ctx context.Context, userID int64) ([]*auth.Workspace, error) {
	args := m.Called(ctx, userID)
	records, _ := args.Get(0).([]*auth.Workspace)
	return records, args.Error(1)
}

func (m *MockWorkspaces) IsMember(ctx context.Context, userID, workspaceID int64) (bool, error) {
	args := m.Called(ctx, userID, workspaceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspaces) RequireMembership(ctx context.Context, userID, workspaceID int64) error {
	args := m.Called(ctx, userID, workspaceID)
	return args.Error(0)
}

func (m *MockWorkspaces) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspaces) CreateTx(ctx context.Context, tx bun.IDB, record *auth.Workspace) (*auth.Workspace, error) {
	args := m.Called(ctx, tx, record)
	workspace, _ := args.Get(0).(*auth.Workspace)
	return workspace, args.Error(1)
}

func (m *MockWorkspaces) AddMemberTx(ctx context.Context, tx bun.IDB, userID, workspaceID int64) error {
	args := m.Called(ctx, tx, userID, workspaceID)
	return args.Error(0)
}

// MockTokenService implements auth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssuePreAuth(userID int64, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) VerifyPreAuth(raw string) (*auth.PreAuthClaims, error) {
	args := m.Called(raw)
	claims, _ := args.Get(0).(*auth.PreAuthClaims)
	return claims, args.Error(1)
}

func (m *MockTokenService) IssueSession(userID, workspaceID int64, extra map[string]any) (string, error) {
	args := m.Called(userID, workspaceID, extra)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) VerifySession(raw string) (*auth.SessionClaims, error) {
	args := m.Called(raw)
	claims, _ := args.Get(0).(*auth.SessionClaims)
	return claims, args.Error(1)
}

// MockRepositoryManager implements auth.RepositoryManager over the mock
// repositories. RunInTx invokes the callback directly; the mocked
// repositories never touch the zero-valued transaction handle.
type MockRepositoryManager struct {
	UsersRepo      *MockUsers
	WorkspacesRepo *MockWorkspaces
}

func NewMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{
		UsersRepo:      &MockUsers{},
		WorkspacesRepo: &MockWorkspaces{},
	}
}

func (m *MockRepositoryManager) Users() auth.Users {
	return m.UsersRepo
}

func (m *MockRepositoryManager) Workspaces() auth.Workspaces {
	return m.WorkspacesRepo
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Validate() error {
	return nil
}
