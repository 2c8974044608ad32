package auth

import (
	"context"
	"regexp"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 8

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// LoginFlow orchestrates the login state machine:
//
//	AwaitingCredentials -> PreAuthIssued -> SessionIssued
//
// Start performs the first transition, Complete the second, and Login fuses
// both for legacy callers. Rejections are typed sentinel errors. Both entry
// points run through verifyCredentials and finishLogin so the check
// sequence cannot drift between them.
type LoginFlow struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

// LoginFlowOption customizes the flow.
type LoginFlowOption func(*LoginFlow)

// WithLoginFlowLogger overrides the logger.
func WithLoginFlowLogger(logger Logger) LoginFlowOption {
	return func(f *LoginFlow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewLoginFlow creates the protocol orchestrator.
func NewLoginFlow(repo RepositoryManager, tokens TokenService, opts ...LoginFlowOption) *LoginFlow {
	f := &LoginFlow{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// StartResult carries the pre-auth token plus the workspaces the caller may
// complete into.
type StartResult struct {
	LoginToken string             `json:"loginToken"`
	Email      string             `json:"email"`
	Workspaces []WorkspaceSummary `json:"workspaces"`
}

// LoginResult is the terminal state of a successful login or signup.
type LoginResult struct {
	Token     string     `json:"-"`
	User      *User      `json:"user"`
	Workspace *Workspace `json:"workspace"`
}

// SignupInput is the payload for new-account creation.
type SignupInput struct {
	Email         string
	Password      string
	DisplayName   string
	WorkspaceSlug string
	WorkspaceName string
}

// Start verifies the password and issues a pre-auth token together with the
// candidate workspaces. Unknown email and wrong password are deliberately
// indistinguishable.
func (f *LoginFlow) Start(ctx context.Context, email, password string) (*StartResult, error) {
	user, err := f.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	candidates, err := f.repo.Workspaces().ForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		f.logger.Info("login rejected, no workspace access", "user_id", user.ID)
		return nil, ErrNoWorkspaceAccess
	}

	token, err := f.tokens.IssuePreAuth(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	summaries := make([]WorkspaceSummary, 0, len(candidates))
	for _, w := range candidates {
		summaries = append(summaries, w.Summary())
	}

	return &StartResult{
		LoginToken: token,
		Email:      user.Email,
		Workspaces: summaries,
	}, nil
}

// Complete exchanges a pre-auth token and a workspace slug for a session.
func (f *LoginFlow) Complete(ctx context.Context, loginToken, slug string) (*LoginResult, error) {
	claims, err := f.tokens.VerifyPreAuth(loginToken)
	if err != nil {
		return nil, err
	}

	workspace, err := f.resolveWorkspace(ctx, slug)
	if err != nil {
		return nil, err
	}

	return f.finishLogin(ctx, claims.UID, workspace)
}

// Login is the legacy fused flow: workspace existence, then credential
// validity, then membership, in that order.
func (f *LoginFlow) Login(ctx context.Context, email, password, slug string) (*LoginResult, error) {
	workspace, err := f.resolveWorkspace(ctx, slug)
	if err != nil {
		return nil, err
	}

	user, err := f.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return f.finishLogin(ctx, user.ID, workspace)
}

// Signup creates the workspace, the user, and the membership atomically and
// issues a session exactly as Complete would. Partial creation is a
// data-integrity bug, so all three ride one transaction.
func (f *LoginFlow) Signup(ctx context.Context, input SignupInput) (*LoginResult, error) {
	if !slugPattern.MatchString(input.WorkspaceSlug) {
		return nil, ErrSlugInvalid
	}

	if len(input.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	taken, err := f.repo.Workspaces().SlugExists(ctx, input.WorkspaceSlug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	taken, err = f.repo.Users().EmailExists(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	var user *User
	var workspace *Workspace

	err = f.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		workspace, err = f.repo.Workspaces().CreateTx(ctx, tx, &Workspace{
			Slug: input.WorkspaceSlug,
			Name: input.WorkspaceName,
		})
		if err != nil {
			return err
		}

		user, err = f.repo.Users().CreateTx(ctx, tx, input.Email, input.DisplayName, input.Password)
		if err != nil {
			return err
		}

		return f.repo.Workspaces().AddMemberTx(ctx, tx, user.ID, workspace.ID)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Info("signup complete", "user_id", user.ID, "workspace_id", workspace.ID)

	return f.issueSession(user, workspace)
}

// verifyCredentials loads the principal by email and compares the password.
// Both failure branches collapse into ErrInvalidCredentials.
func (f *LoginFlow) verifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := f.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			f.logger.Info("login rejected, unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			f.logger.Info("login rejected, password mismatch", "user_id", user.ID)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compare password")
	}

	return user, nil
}

// finishLogin is the shared tail of Complete and Login: membership check,
// principal reload, session issuance.
func (f *LoginFlow) finishLogin(ctx context.Context, userID int64, workspace *Workspace) (*LoginResult, error) {
	if err := f.repo.Workspaces().RequireMembership(ctx, userID, workspace.ID); err != nil {
		return nil, err
	}

	// Defense against the principal being deleted between Start and
	// Complete.
	user, err := f.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, err
	}

	return f.issueSession(user, workspace)
}

func (f *LoginFlow) issueSession(user *User, workspace *Workspace) (*LoginResult, error) {
	token, err := f.tokens.IssueSession(user.ID, workspace.ID, map[string]any{
		"name":  user.DisplayName,
		"email": user.Email,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		User:      user,
		Workspace: workspace,
	}, nil
}

func (f *LoginFlow) resolveWorkspace(ctx context.Context, slug string) (*Workspace, error) {
	workspace, err := f.repo.Workspaces().GetBySlug(ctx, slug)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}

	return workspace, nil
}
