package auth

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the credential store: it loads principals and creates them with
// a hashed password. Storage failures are fatal and propagate wrapped; they
// are never retried here.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, email, displayName, plainPassword string) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, email, displayName, plainPassword string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository creates the bun-backed credential store.
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (r *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordNotFound("email", email)
		}
		return nil, storageError(err, "failed to load user by email")
	}

	return record, nil
}

func (r *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordNotFound("id", id)
		}
		return nil, storageError(err, "failed to load user by id")
	}

	return record, nil
}

func (r *users) Create(ctx context.Context, email, displayName, plainPassword string) (*User, error) {
	return r.CreateTx(ctx, r.db, email, displayName, plainPassword)
}

func (r *users) CreateTx(ctx context.Context, tx bun.IDB, email, displayName, plainPassword string) (*User, error) {
	hash, err := HashPassword(plainPassword)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "failed to hash password")
	}

	record := &User{
		Email:        normalizeEmail(email),
		DisplayName:  displayName,
		PasswordHash: hash,
	}

	if _, err := tx.NewInsert().Model(record).Returning("*").Exec(ctx); err != nil {
		return nil, storageError(err, "failed to create user")
	}

	return record, nil
}

func (r *users) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Exists(ctx)

	if err != nil {
		return false, storageError(err, "failed to check email")
	}

	return exists, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func recordNotFound(field string, value any) error {
	return errors.New("record not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithMetadata(map[string]any{field: value})
}
