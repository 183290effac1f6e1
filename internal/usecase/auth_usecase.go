// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// AdminInput describes the administrator account to seed.
type AdminInput struct {
	Name     string
	Email    string
	Password string
}

// --- Output DTOs ---

// LoginOutput returns the access token after a successful login.
type LoginOutput struct {
	Token string
	User  *entity.User
}

// AuthUsecase defines the interface for account and login operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Signup(ctx context.Context, input *SignupInput) (*entity.User, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
	// EnsureAdmin creates the admin account unless the email is taken.
	// created is false when an account already existed.
	EnsureAdmin(ctx context.Context, input *AdminInput) (user *entity.User, created bool, err error)
}
