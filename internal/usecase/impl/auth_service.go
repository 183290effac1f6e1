// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup registers a regular user.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*entity.User, error) {
	user, err := srv.createUser(ctx, input.Name, input.Email, input.Password, entity.RoleUser)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("User registered", slog.String("user_id", user.ID.String()))

	return user, nil
}

func (srv *authService) createUser(ctx context.Context, name, email, password string, role entity.Role) (*entity.User, error) {
	if err := srv.hasher.ValidatePasswordStrength(password); err != nil {
		return nil, domainerrors.ErrPasswordStrength.WithDetails(err.Error())
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := srv.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domainerrors.ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to look up email")
	}

	hash, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	now := srv.now()
	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domainerrors.ErrUserAlreadyExists
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	return user, nil
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Debug("Login for unknown email")

		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login with wrong password", slog.String("user_id", user.ID.String()))

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := srv.tokenService.GenerateToken(user.ID, user.Roles().ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token")
	}

	return &usecase.LoginOutput{Token: token, User: user}, nil
}

func (srv *authService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.userRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

// EnsureAdmin seeds the administrator. Running it twice is a no-op.
func (srv *authService) EnsureAdmin(ctx context.Context, input *usecase.AdminInput) (*entity.User, bool, error) {
	existing, err := srv.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			return nil, false, domainerrors.ErrConflict.WithDetails("email belongs to a non-admin account")
		}

		return existing, false, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, false, errors.Wrap(err, "failed to look up admin")
	}

	user, err := srv.createUser(ctx, input.Name, input.Email, input.Password, entity.RoleAdmin)
	if err != nil {
		return nil, false, err
	}

	srv.log(ctx).Info("Admin account created", slog.String("user_id", user.ID.String()))

	return user, true, nil
}
