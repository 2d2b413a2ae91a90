// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package sec

import "strconv"

// Principal is the resolved identity of an authenticated request.
//
// It is what the access-control middleware attaches to the request context
// once a bearer token has been validated and its user loaded.
type Principal struct {
	UserID                int64
	Username              string
	Role                  UserRole
	IsActive              bool
	PasswordResetRequired bool

	// MemberID links the account to a member record, if any.
	MemberID *int64
}

// Owns reports whether resourceID identifies the principal's own account.
func (p *Principal) Owns(resourceID string) bool {
	if p == nil || resourceID == "" {
		return false
	}
	return resourceID == strconv.FormatInt(p.UserID, 10)
}

// OwnsMember reports whether resourceID identifies the member record linked
// to the principal.
func (p *Principal) OwnsMember(resourceID string) bool {
	if p == nil || p.MemberID == nil || resourceID == "" {
		return false
	}
	return resourceID == strconv.FormatInt(*p.MemberID, 10)
}
