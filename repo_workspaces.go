package auth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Workspaces resolves tenants by slug or id and answers membership
// questions. It is used during login (slug to id) and during per-request
// re-validation (to catch membership revoked after a session was issued).
type Workspaces interface {
	GetBySlug(ctx context.Context, slug string) (*Workspace, error)
	GetByID(ctx context.Context, id int64) (*Workspace, error)
	ForUser(ctx context.Context, userID int64) ([]*Workspace, error)
	IsMember(ctx context.Context, userID, workspaceID int64) (bool, error)
	RequireMembership(ctx context.Context, userID, workspaceID int64) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Workspace) (*Workspace, error)
	AddMemberTx(ctx context.Context, tx bun.IDB, userID, workspaceID int64) error
}

type workspaces struct {
	db *bun.DB
}

var _ Workspaces = (*workspaces)(nil)

// NewWorkspacesRepository creates the bun-backed workspace resolver.
func NewWorkspacesRepository(db *bun.DB) Workspaces {
	return &workspaces{db: db}
}

func (r *workspaces) GetBySlug(ctx context.Context, slug string) (*Workspace, error) {
	record := &Workspace{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordNotFound("slug", slug)
		}
		return nil, storageError(err, "failed to load workspace by slug")
	}

	return record, nil
}

func (r *workspaces) GetByID(ctx context.Context, id int64) (*Workspace, error) {
	record := &Workspace{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordNotFound("id", id)
		}
		return nil, storageError(err, "failed to load workspace by id")
	}

	return record, nil
}

func (r *workspaces) ForUser(ctx context.Context, userID int64) ([]*Workspace, error) {
	var records []*Workspace
	err := r.db.NewSelect().
		Model(&records).
		Join("JOIN memberships AS mbr ON mbr.workspace_id = ?TableAlias.id").
		Where("mbr.user_id = ?", userID).
		Order("slug ASC").
		Scan(ctx)

	if err != nil {
		return nil, storageError(err, "failed to list workspaces for user")
	}

	return records, nil
}

func (r *workspaces) IsMember(ctx context.Context, userID, workspaceID int64) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Membership)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.workspace_id = ?", workspaceID).
		Exists(ctx)

	if err != nil {
		return false, storageError(err, "failed to check membership")
	}

	return exists, nil
}

func (r *workspaces) RequireMembership(ctx context.Context, userID, workspaceID int64) error {
	ok, err := r.IsMember(ctx, userID, workspaceID)
	if err != nil {
		return err
	}

	if !ok {
		return ErrMembershipRequired
	}

	return nil
}

func (r *workspaces) SlugExists(ctx context.Context, slug string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Workspace)(nil)).
		Where("?TableAlias.slug = ?", slug).
		Exists(ctx)

	if err != nil {
		return false, storageError(err, "failed to check slug")
	}

	return exists, nil
}

func (r *workspaces) CreateTx(ctx context.Context, tx bun.IDB, record *Workspace) (*Workspace, error) {
	if _, err := tx.NewInsert().Model(record).Returning("*").Exec(ctx); err != nil {
		return nil, storageError(err, "failed to create workspace")
	}

	return record, nil
}

func (r *workspaces) AddMemberTx(ctx context.Context, tx bun.IDB, userID, workspaceID int64) error {
	record := &Membership{
		UserID:      userID,
		WorkspaceID: workspaceID,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return storageError(err, "failed to create membership")
	}

	return nil
}
