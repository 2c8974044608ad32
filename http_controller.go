package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// AuthControllerRoutes holds the route paths the controller registers.
type AuthControllerRoutes struct {
	LoginStart    string
	LoginComplete string
	Login         string
	Logout        string
	Me            string
	Signup        string
}

// AuthController exposes the login protocol over JSON. Session tokens travel
// both in the response body, for API clients, and in an HTTP-only cookie for
// browsers.
type AuthController struct {
	Logger       Logger
	Flow         *LoginFlow
	Routes       *AuthControllerRoutes
	CookieName   string
	SessionTTL   time.Duration
	ErrorHandler router.ErrorHandler
}

// AuthControllerOption configures the controller.
type AuthControllerOption func(*AuthController) *AuthController

// WithAuthControllerLogger overrides the logger.
func WithAuthControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithAuthControllerFlow sets the login protocol implementation. Required.
func WithAuthControllerFlow(flow *LoginFlow) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Flow = flow
		return c
	}
}

// WithAuthControllerConfig applies cookie settings from the environment
// configuration.
func WithAuthControllerConfig(cfg *Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.CookieName = cfg.CookieName
		c.SessionTTL = cfg.SessionTTL
		return c
	}
}

// NewAuthController creates the controller with default routes.
func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		CookieName: "wsession",
		SessionTTL: time.Hour,
		Routes: &AuthControllerRoutes{
			LoginStart:    "/auth/login/start",
			LoginComplete: "/auth/login/complete",
			Login:         "/auth/login",
			Logout:        "/auth/logout",
			Me:            "/auth/me",
			Signup:        "/auth/signup",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Flow == nil {
		panic("Missing LoginFlow in auth controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = c.handleError
	}

	return c
}

// RegisterAuthRoutes mounts the controller on the given router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.LoginStart, controller.LoginStart).
		SetName("auth.login-start.post")

	app.Post(controller.Routes.LoginComplete, controller.LoginComplete).
		SetName("auth.login-complete.post")

	app.Post(controller.Routes.Login, controller.Login).
		SetName("auth.login.post")

	app.Post(controller.Routes.Logout, controller.Logout).
		SetName("auth.logout.post")

	app.Get(controller.Routes.Me, controller.Me).
		SetName("auth.me.get")

	app.Post(controller.Routes.Signup, controller.Signup).
		SetName("auth.signup.post")

	return controller
}

// LoginStartRequest is the first-phase payload.
type LoginStartRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginStartRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginStart(ctx router.Context) error {
	payload := new(LoginStartRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	result, err := a.Flow.Start(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

// LoginCompleteRequest is the second-phase payload.
type LoginCompleteRequest struct {
	LoginToken    string `json:"loginToken"`
	WorkspaceSlug string `json:"workspaceSlug"`
}

// Validate will run validation rules
func (r LoginCompleteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.LoginToken, validation.Required),
		validation.Field(&r.WorkspaceSlug, validation.Required),
	)
}

func (a *AuthController) LoginComplete(ctx router.Context) error {
	payload := new(LoginCompleteRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	result, err := a.Flow.Complete(ctx.Context(), payload.LoginToken, payload.WorkspaceSlug)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return a.sessionResponse(ctx, result)
}

// LoginRequest is the legacy fused payload.
type LoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	WorkspaceSlug string `json:"workspaceSlug"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.WorkspaceSlug, validation.Required),
	)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	result, err := a.Flow.Login(ctx.Context(), payload.Email, payload.Password, payload.WorkspaceSlug)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return a.sessionResponse(ctx, result)
}

func (a *AuthController) Logout(ctx router.Context) error {
	a.cookieDel(ctx, a.CookieName)
	return ctx.JSON(router.StatusOK, map[string]bool{"success": true})
}

// Me reports the authenticated actor, or a nil user for anonymous
// requests. Mount it behind the optional-mode middleware.
func (a *AuthController) Me(ctx router.Context) error {
	actor, ok := ActorFromContext(ctx.Context())
	if !ok {
		return ctx.JSON(router.StatusOK, map[string]any{"user": nil})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": map[string]any{
			"userId":      actor.UserID,
			"workspaceId": actor.WorkspaceID,
			"email":       actor.Email,
			"displayName": actor.DisplayName,
		},
	})
}

// SignupRequest is the account-creation payload.
type SignupRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	DisplayName   string `json:"displayName"`
	WorkspaceSlug string `json:"workspaceSlug"`
	WorkspaceName string `json:"workspaceName"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 100)),
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.WorkspaceSlug, validation.Required, validation.Length(1, 100), validation.Match(slugPattern)),
		validation.Field(&r.WorkspaceName, validation.Required, validation.Length(1, 200)),
	)
}

func (a *AuthController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	result, err := a.Flow.Signup(ctx.Context(), SignupInput{
		Email:         payload.Email,
		Password:      payload.Password,
		DisplayName:   payload.DisplayName,
		WorkspaceSlug: payload.WorkspaceSlug,
		WorkspaceName: payload.WorkspaceName,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	a.setCookieToken(ctx, result.Token, a.SessionTTL)

	return ctx.JSON(router.StatusCreated, map[string]any{
		"token":     result.Token,
		"user":      result.User,
		"workspace": result.Workspace.Summary(),
	})
}

func (a *AuthController) sessionResponse(ctx router.Context, result *LoginResult) error {
	a.setCookieToken(ctx, result.Token, a.SessionTTL)

	return ctx.JSON(router.StatusOK, map[string]any{
		"token":     result.Token,
		"user":      result.User,
		"workspace": result.Workspace.Summary(),
	})
}

func (a *AuthController) badRequest(ctx router.Context, err error) error {
	a.Logger.Error("failed to parse request payload", "error", err)
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error": map[string]string{
			"message": "failed to parse request body",
			"code":    "BAD_REQUEST",
		},
	})
}

func (a *AuthController) validationFailed(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message": "validation failed",
			"code":    "VALIDATION_FAILED",
			"fields":  err,
		},
	})
}

// handleError renders any flow failure as a JSON envelope. Rich errors carry
// their own HTTP status; anything untyped is a 500 with the detail kept out
// of the response.
func (a *AuthController) handleError(ctx router.Context, err error) error {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		rich = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := rich.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	if rich.Category == errors.CategoryInternal {
		a.Logger.Error("auth request failed",
			"error", rich.Message,
			"category", rich.Category,
		)
		return ctx.JSON(status, map[string]any{
			"error": map[string]string{
				"message": "internal server error",
				"code":    "INTERNAL",
			},
		})
	}

	return ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"message": rich.Message,
			"code":    rich.TextCode,
		},
	})
}

func (a *AuthController) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.CookieName,
		Value:    val,
		Path:     "/",
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *AuthController) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
