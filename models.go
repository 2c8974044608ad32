package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the principal model. Principals are global; workspace scoping is
// expressed through Membership rows, never on the user itself.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Email         string     `bun:"email,notnull,unique" json:"email"`
	DisplayName   string     `bun:"display_name,notnull" json:"display_name"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Workspace is the tenant model. Its ID is the discriminator row-filtering
// policies scope by.
type Workspace struct {
	bun.BaseModel `bun:"table:workspaces,alias:wsp"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug"`
	Name          string     `bun:"name,notnull" json:"name"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Membership records that a user may act within a workspace. Absence of a
// row is the sole authorization gate for workspace-scoped access.
type Membership struct {
	bun.BaseModel `bun:"table:memberships,alias:mbr"`
	UserID        int64      `bun:"user_id,pk" json:"user_id"`
	WorkspaceID   int64      `bun:"workspace_id,pk" json:"workspace_id"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Summary converts a workspace into its picker projection.
func (w *Workspace) Summary() WorkspaceSummary {
	return WorkspaceSummary{
		ID:   w.ID,
		Slug: w.Slug,
		Name: w.Name,
	}
}
