// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/zlovtnik/iead-sub004/internal/platform/apperr"
	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
	"github.com/zlovtnik/iead-sub004/internal/platform/ctxutil"
	"github.com/zlovtnik/iead-sub004/internal/platform/sec"
	"github.com/zlovtnik/iead-sub004/internal/session"
	"github.com/zlovtnik/iead-sub004/internal/wire"
)

// DefaultOwnerParam is the route capture compared against the principal when
// [Policy.OwnerParam] is empty.
const DefaultOwnerParam = "id"

// Policy is the access rule attached to a route.
type Policy struct {
	// MinRole is the lowest role allowed through.
	MinRole sec.UserRole

	// RequireOwnership restricts the route to the owner of the resource
	// named by the OwnerParam capture.
	RequireOwnership bool
	OwnerParam       string

	// Owner decides whether the principal owns the resource id. Defaults
	// to comparing against the principal's user id.
	Owner func(principal *sec.Principal, resourceID string) bool

	// OwnershipBypass is the lowest role exempt from the ownership check.
	// Empty means nobody is exempt.
	OwnershipBypass sec.UserRole

	// AllowPasswordReset lets principals that must change their password through.
	AllowPasswordReset bool
}

// SessionValidator resolves a bearer token into its session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*session.Session, error)
}

// PrincipalResolver loads the identity behind a session.
//
// A 4xx [apperr.AppError] means the user no longer exists and is treated as
// unauthenticated; any other error is a server failure.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID int64) (*sec.Principal, error)
}

// Access enforces a [Policy].
type Access struct {
	sessions   SessionValidator
	principals PrincipalResolver
	policy     Policy
}

// NewAccess builds the access-control middleware for policy.
func NewAccess(sessions SessionValidator, principals PrincipalResolver, policy Policy) *Access {
	if policy.RequireOwnership && policy.OwnerParam == "" {
		policy.OwnerParam = DefaultOwnerParam
	}
	if policy.Owner == nil {
		policy.Owner = (*sec.Principal).Owns
	}
	return &Access{sessions: sessions, principals: principals, policy: policy}
}

/*
Handle authenticates and authorizes the request.

# Flow
 1. Extract 'Authorization: Bearer <token>' (missing or malformed -> 401).
 2. Validate the session (invalid or expired -> 401, store failure -> 500).
 3. Resolve the principal (unknown or inactive -> 401).
 4. Check the role against MinRole (-> 403).
 5. Check ownership of the target resource unless bypassed (-> 403).
 6. Inject the principal and session into the request context.
*/
func (a *Access) Handle(request *wire.Request, next wire.Handler) (*wire.Response, error) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	// ── 1. Credential ─────────────────────────────────────────────────────
	token, ok := BearerToken(request.Header.Get(constants.HeaderAuthorization))
	if !ok {
		return nil, apperr.Unauthorized("Authentication required")
	}

	// ── 2. Session ────────────────────────────────────────────────────────
	current, err := a.sessions.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrInvalid) {
			return nil, apperr.Unauthorized("Invalid or expired session")
		}
		return nil, apperr.Internal(err)
	}

	// ── 3. Principal ──────────────────────────────────────────────────────
	principal, err := a.principals.ResolvePrincipal(ctx, current.UserID)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus < 500 {
			return nil, apperr.Unauthorized("Invalid or expired session")
		}
		return nil, apperr.Internal(err)
	}
	if principal == nil || !principal.IsActive {
		return nil, apperr.Unauthorized("Account is disabled")
	}

	// ── 4. Role ───────────────────────────────────────────────────────────
	if !principal.Role.AtLeast(a.policy.MinRole) {
		logger.WarnContext(ctx, "access_denied_role",
			slog.Int64("user_id", principal.UserID),
			slog.String("role", string(principal.Role)),
			slog.String("required", string(a.policy.MinRole)),
		)
		return nil, apperr.Forbidden("Insufficient permissions")
	}

	if principal.PasswordResetRequired && !a.policy.AllowPasswordReset {
		return nil, apperr.Forbidden("Password change required")
	}

	// ── 5. Ownership ──────────────────────────────────────────────────────
	if a.policy.RequireOwnership && !a.bypassesOwnership(principal) {
		if !a.policy.Owner(principal, request.PathParam(a.policy.OwnerParam)) {
			logger.WarnContext(ctx, "access_denied_ownership",
				slog.Int64("user_id", principal.UserID),
				slog.String("resource", request.PathParam(a.policy.OwnerParam)),
			)
			return nil, apperr.Forbidden("You can only access your own records")
		}
	}

	// ── 6. Context Injection ──────────────────────────────────────────────
	ctx = ctxutil.WithPrincipal(ctx, principal)
	ctx = ctxutil.WithSession(ctx, current.ID, token)
	ctx = ctxutil.WithLogger(ctx, logger.With(slog.Int64("user_id", principal.UserID)))

	return next.Serve(request.WithContext(ctx))
}

func (a *Access) bypassesOwnership(principal *sec.Principal) bool {
	return a.policy.OwnershipBypass != "" && principal.Role.AtLeast(a.policy.OwnershipBypass)
}

// BearerToken extracts the credential of an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], constants.BearerScheme) {
		return "", false
	}
	return parts[1], true
}
