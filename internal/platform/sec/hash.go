// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

// Package sec provides cryptographic primitives and the role model.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, session
// token generation, role ordering) from the pipeline and the domain logic.
package sec

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the account does not exist so that an
// unknown username costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)
	if err != nil {
		return nil
	}
	return hash
})

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// BurnPasswordCheck performs a throwaway bcrypt comparison.
func BurnPasswordCheck(plainTextPassword string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(plainTextPassword))
}
