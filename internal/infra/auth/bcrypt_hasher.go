// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"storefront/config"
	"storefront/internal/domain/service"
)

const (
	defaultMinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	maxBcryptPasswordLength = 72
)

// PasswordPolicy is the strength policy enforced on new passwords.
type PasswordPolicy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumbers   bool
	RequireSpecial   bool
}

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy PasswordPolicy
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost > 0 {
		cost = cfg.Auth.BcryptCost
	}

	policy := PasswordPolicy{}
	if ps := cfg.PasswordStrength; ps != nil {
		policy = PasswordPolicy{
			MinLength:        ps.MinLength,
			MaxLength:        ps.MaxLength,
			RequireUppercase: ps.RequireUppercase,
			RequireLowercase: ps.RequireLowercase,
			RequireNumbers:   ps.RequireNumbers,
			RequireSpecial:   ps.RequireSpecial,
		}
	}

	return NewBcryptHasherWithCost(cost, policy)
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost, clamped to bcrypt's range.
func NewBcryptHasherWithCost(cost int, policy PasswordPolicy) *bcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if policy.MinLength <= 0 {
		policy.MinLength = defaultMinPasswordLength
	}
	if policy.MaxLength <= 0 || policy.MaxLength > maxBcryptPasswordLength {
		policy.MaxLength = maxBcryptPasswordLength
	}

	return &bcryptHasher{cost: cost, policy: policy}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	if err := h.ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength reports the first policy rule the password breaks.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	p := h.policy
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}
	if len(password) > p.MaxLength {
		return fmt.Errorf("password must be at most %d bytes long", p.MaxLength)
	}
	if p.RequireLowercase && !h.hasLowercase(password) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if p.RequireUppercase && !h.hasUppercase(password) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if p.RequireNumbers && !h.hasNumbers(password) {
		return fmt.Errorf("password must contain at least one number")
	}
	if p.RequireSpecial && !h.hasSpecialChars(password) {
		return fmt.Errorf("password must contain at least one special character")
	}

	return nil
}

func (h *bcryptHasher) hasUppercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

func (h *bcryptHasher) hasLowercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}

func (h *bcryptHasher) hasNumbers(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func (h *bcryptHasher) hasSpecialChars(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) >= 0
}
