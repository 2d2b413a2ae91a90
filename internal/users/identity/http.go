// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package identity

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
	"github.com/zlovtnik/iead-sub004/internal/platform/ctxutil"
	"github.com/zlovtnik/iead-sub004/internal/platform/middleware"
	requestutil "github.com/zlovtnik/iead-sub004/internal/platform/request"
	"github.com/zlovtnik/iead-sub004/internal/platform/respond"
	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
	"github.com/zlovtnik/iead-sub004/internal/platform/validate"
	"github.com/zlovtnik/iead-sub004/internal/router"
	"github.com/zlovtnik/iead-sub004/internal/session"
	"github.com/zlovtnik/iead-sub004/internal/wire"
	"github.com/zlovtnik/iead-sub004/pkg/pagination"
)

// # Definitions & Constructors

// LoginLimit bounds login attempts per client address and username.
type LoginLimit struct {
	MaxAttempts int
	Window      time.Duration
}

// Handler exposes the identity endpoints.
type Handler struct {
	service  *Service
	composer *middleware.Composer
	limit    LoginLimit
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service, composer *middleware.Composer, limit LoginLimit) *Handler {
	return &Handler{service: service, composer: composer, limit: limit}
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// # Policies

var (
	staffPolicy = &middleware.Policy{MinRole: sec.RolePastor}

	// selfPolicy is for endpoints an account that must change its password may still use.
	selfPolicy = &middleware.Policy{MinRole: sec.RoleMember, AllowPasswordReset: true}

	adminPolicy = &middleware.Policy{MinRole: sec.RoleAdmin}

	ownerPolicy = &middleware.Policy{
		MinRole:          sec.RoleMember,
		RequireOwnership: true,
		OwnershipBypass:  sec.RolePastor,
	}
)

/*
Register mounts the identity routes.

# Endpoints
  - POST /api/v1/auth/login               : Public, rate limited.
  - POST /api/v1/auth/logout              : Any member.
  - GET  /api/v1/auth/me                  : Any member.
  - PUT  /api/v1/auth/password            : Any member.
  - GET  /api/v1/users                    : Pastor and above, paginated.
  - POST /api/v1/users                    : Admin.
  - GET  /api/v1/users/{id:[0-9]+}        : Owner, or pastor and above.
  - PUT  /api/v1/users/{id:[0-9]+}/active : Admin.
*/
func (handler *Handler) Register(routes *router.Router) error {
	compose := handler.composer.Compose

	registrations := []struct {
		path    string
		methods router.Methods
	}{
		{"/api/v1/auth/login", router.Methods{
			"POST": compose(middleware.Endpoint{
				Handler: wire.HandlerFunc(handler.login),
				RateLimit: &middleware.RateRule{
					Name:        "login",
					MaxAttempts: handler.limit.MaxAttempts,
					Window:      handler.limit.Window,
					Key:         loginKey,
				},
				Schema: validate.Schema{
					FieldUsername: {Required: true, MaxLen: 64},
					FieldPassword: {Required: true, MaxLen: 128},
				},
			}),
		}},
		{"/api/v1/auth/logout", router.Methods{
			"POST": compose(middleware.Endpoint{Handler: wire.HandlerFunc(handler.logout), Policy: selfPolicy}),
		}},
		{"/api/v1/auth/me", router.Methods{
			"GET": compose(middleware.Endpoint{Handler: wire.HandlerFunc(handler.me), Policy: selfPolicy}),
		}},
		{"/api/v1/auth/password", router.Methods{
			"PUT": compose(middleware.Endpoint{
				Handler: wire.HandlerFunc(handler.changePassword),
				Schema: validate.Schema{
					FieldCurrentPassword: {Required: true, MaxLen: 128},
					FieldNewPassword:     {Required: true, MinLen: 8, MaxLen: 128, Password: true},
				},
				Policy: selfPolicy,
			}),
		}},
		{"/api/v1/users", router.Methods{
			"GET": compose(middleware.Endpoint{
				Handler: wire.HandlerFunc(handler.listUsers),
				Schema: validate.Schema{
					pagination.ParamPage:  {Min: validate.Bound(1)},
					pagination.ParamLimit: {Min: validate.Bound(1), Max: validate.Bound(pagination.MaxLimit)},
				},
				Policy: staffPolicy,
			}),
			"POST": compose(middleware.Endpoint{
				Handler: wire.HandlerFunc(handler.createUser),
				Schema: validate.Schema{
					FieldUsername: {Required: true, MinLen: 3, MaxLen: 32, Pattern: usernamePattern},
					FieldEmail:    {Required: true, MaxLen: 254, Format: validate.FormatEmail},
					FieldPassword: {Required: true, MinLen: 8, MaxLen: 128, Password: true},
					FieldRole:     {OneOf: sec.RoleNames()},
					FieldMemberID: {Min: validate.Bound(1)},
				},
				Policy: adminPolicy,
			}),
		}},
		{"/api/v1/users/{id:[0-9]+}", router.Methods{
			"GET": compose(middleware.Endpoint{Handler: wire.HandlerFunc(handler.getUser), Policy: ownerPolicy}),
		}},
		{"/api/v1/users/{id:[0-9]+}/active", router.Methods{
			"PUT": compose(middleware.Endpoint{
				Handler: wire.HandlerFunc(handler.setActive),
				Schema:  validate.Schema{FieldActive: {Required: true, OneOf: []string{"true", "false"}}},
				Policy:  adminPolicy,
			}),
		}},
	}

	for _, registration := range registrations {
		if err := routes.Register(registration.path, registration.methods); err != nil {
			return err
		}
	}
	return nil
}

func loginKey(request *wire.Request) string {
	return request.ClientIP() + ":" + strings.ToLower(request.Param(FieldUsername))
}

// # Response Payloads

type sessionResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

func newSessionResponse(result *LoginResult) sessionResponse {
	return sessionResponse{
		Token:     result.Token,
		TokenType: constants.BearerScheme,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	}
}

func metadata(request *wire.Request) session.Metadata {
	return session.Metadata{
		UserAgent: request.Header.Get("User-Agent"),
		IPAddress: request.ClientIP(),
	}
}

// # Handlers

/*
login authenticates credentials and opens a session.

POST /api/v1/auth/login

Response:
  - 200: sessionResponse
  - 400: Missing username or password
  - 401: Invalid credentials or disabled account
  - 429: Too many attempts
*/
func (handler *Handler) login(request *wire.Request) (*wire.Response, error) {
	meta := metadata(request)

	result, err := handler.service.Login(request.Context(), LoginInput{
		Username:  request.Param(FieldUsername),
		Password:  request.Param(FieldPassword),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
	})
	if err != nil {
		return nil, err
	}

	return respond.OK(newSessionResponse(result)), nil
}

// logout ends the caller's session. POST /api/v1/auth/logout -> 204.
func (handler *Handler) logout(request *wire.Request) (*wire.Response, error) {
	if err := handler.service.Logout(request.Context(), ctxutil.GetToken(request.Context())); err != nil {
		return nil, err
	}
	return respond.NoContent(), nil
}

// me returns the caller's account. GET /api/v1/auth/me -> 200.
func (handler *Handler) me(request *wire.Request) (*wire.Response, error) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		return nil, err
	}

	user, err := handler.service.Get(request.Context(), principal.UserID)
	if err != nil {
		return nil, err
	}
	return respond.OK(user), nil
}

/*
changePassword rotates the caller's password.

PUT /api/v1/auth/password

Response:
  - 200: sessionResponse carrying the replacement token
  - 400: New password fails the composition rules
  - 401: Current password is incorrect
*/
func (handler *Handler) changePassword(request *wire.Request) (*wire.Response, error) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		return nil, err
	}

	result, err := handler.service.ChangePassword(request.Context(),
		principal.UserID,
		request.Param(FieldCurrentPassword),
		request.Param(FieldNewPassword),
		metadata(request),
	)
	if err != nil {
		return nil, err
	}

	return respond.OK(newSessionResponse(result)), nil
}

/*
createUser provisions an account.

POST /api/v1/users

Response:
  - 201: User
  - 400: Validation failure
  - 409: Username or email already exists
*/
func (handler *Handler) createUser(request *wire.Request) (*wire.Response, error) {
	input := CreateUserInput{
		Username: request.Param(FieldUsername),
		Email:    request.Param(FieldEmail),
		Password: request.Param(FieldPassword),
	}

	if raw := request.Param(FieldRole); raw != "" {
		role, err := sec.ParseRole(raw)
		if err != nil {
			return nil, validate.RequiredError(FieldRole, "Unknown role")
		}
		input.Role = role
	}

	memberID, err := requestutil.OptionalInt64(request, FieldMemberID)
	if err != nil {
		return nil, err
	}
	input.MemberID = memberID

	user, err := handler.service.CreateUser(request.Context(), input)
	if err != nil {
		return nil, err
	}
	return respond.Created(user), nil
}

// listUsers pages through accounts. GET /api/v1/users?page=&limit= -> 200.
func (handler *Handler) listUsers(request *wire.Request) (*wire.Response, error) {
	users, meta, err := handler.service.List(request.Context(), pagination.FromValues(request.Params))
	if err != nil {
		return nil, err
	}
	return respond.Paginated(users, meta), nil
}

// getUser returns one account. GET /api/v1/users/{id} -> 200.
func (handler *Handler) getUser(request *wire.Request) (*wire.Response, error) {
	id, err := requestutil.PathID(request, "id", "User")
	if err != nil {
		return nil, err
	}

	user, err := handler.service.Get(request.Context(), id)
	if err != nil {
		return nil, err
	}
	return respond.OK(user), nil
}

// setActive toggles an account. PUT /api/v1/users/{id}/active -> 200.
func (handler *Handler) setActive(request *wire.Request) (*wire.Response, error) {
	id, err := requestutil.PathID(request, "id", "User")
	if err != nil {
		return nil, err
	}

	active, _ := strconv.ParseBool(request.Param(FieldActive))

	user, err := handler.service.SetActive(request.Context(), id, active)
	if err != nil {
		return nil, err
	}
	return respond.OK(user), nil
}
