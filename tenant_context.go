package auth

import (
	"context"
	"strconv"
	"sync"

	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
)

// BindFunc installs the workspace discriminator on the transaction that
// scopes a request. The default uses set_config with is_local=true so the
// setting dies with the transaction; tests swap it for a dialect that has
// no settings machinery.
type BindFunc func(ctx context.Context, tx bun.Tx, setting string, workspaceID int64) error

func defaultBind(ctx context.Context, tx bun.Tx, setting string, workspaceID int64) error {
	if _, err := tx.ExecContext(ctx, "SELECT set_config(?, ?, TRUE)", setting, strconv.FormatInt(workspaceID, 10)); err != nil {
		return storageError(err, "failed to bind workspace discriminator")
	}
	return nil
}

// TenantContextBinder scopes database work to a single workspace. Each
// request gets a dedicated pooled connection and a transaction carrying the
// discriminator as a transaction-local setting, so row-filtering policies
// in the database see current_setting(<setting>) for exactly the lifetime
// of the request. The connection goes back to the pool on every exit path,
// success, error, or panic, and release is idempotent.
type TenantContextBinder struct {
	db      *bun.DB
	setting string
	bind    BindFunc
	logger  Logger
}

// TenantBinderOption customizes the binder.
type TenantBinderOption func(*TenantContextBinder)

// WithBindFunc overrides how the discriminator is installed.
func WithBindFunc(bind BindFunc) TenantBinderOption {
	return func(b *TenantContextBinder) {
		if bind != nil {
			b.bind = bind
		}
	}
}

// WithTenantBinderLogger overrides the logger.
func WithTenantBinderLogger(logger Logger) TenantBinderOption {
	return func(b *TenantContextBinder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewTenantContextBinder creates the binder over the shared pool.
func NewTenantContextBinder(db *bun.DB, cfg *Config, opts ...TenantBinderOption) *TenantContextBinder {
	b := &TenantContextBinder{
		db:      db,
		setting: cfg.TenantSetting,
		bind:    defaultBind,
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// requestScope owns the dedicated connection for one request. release must
// be safe to call more than once: the deferred call races with nothing, but
// an explicit early release from a handler must not double-close.
type requestScope struct {
	conn   bun.Conn
	once   sync.Once
	logger Logger
}

func (s *requestScope) release() {
	s.once.Do(func() {
		if err := s.conn.Close(); err != nil {
			s.logger.Error("failed to release scoped connection", "error", err)
		}
	})
}

// RunScoped acquires a connection, opens a transaction, binds the workspace
// discriminator, and runs fn with a connection that only sees that
// workspace's rows. fn receives both the context (carrying the scoped
// handle for ScopedDB) and the handle directly. The transaction commits
// when fn returns nil and rolls back otherwise.
func (b *TenantContextBinder) RunScoped(ctx context.Context, workspaceID int64, fn func(ctx context.Context, db bun.IDB) error) error {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return storageError(err, "failed to acquire scoped connection")
	}

	scope := &requestScope{conn: conn, logger: b.logger}
	defer scope.release()

	return conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := b.bind(ctx, tx, b.setting, workspaceID); err != nil {
			return err
		}

		return fn(WithScopedDB(ctx, tx), tx)
	})
}

// Middleware scopes the rest of the chain to the authenticated actor's
// workspace. It must run after the authentication middleware; requests
// without an actor pass through unscoped so optional-auth routes keep
// working.
func (b *TenantContextBinder) Middleware() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			actor, ok := ActorFromContext(c.Context())
			if !ok {
				return c.Next()
			}

			return b.RunScoped(c.Context(), actor.WorkspaceID, func(ctx context.Context, _ bun.IDB) error {
				c.SetContext(ctx)
				return c.Next()
			})
		}
	}
}
