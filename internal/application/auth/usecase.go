package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/domain"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/domain/repository"
	"github.com/richland-auto/inventory-api/pkg/jwt"
)

// JWTConfig holds token generation settings.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase covers the thin identity surface: login, owner-gated registration
// and self-service password changes. Everything downstream consumes the
// resolved Actor, never session state.
type UseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewUseCase builds the use case.
func NewUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *UseCase {
	return &UseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Login verifies username/password, signs a JWT and returns token + user.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("unknown user: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized)
	}
	if user.Status != entity.UserStatusActive {
		return nil, fmt.Errorf("user %s is %s: %w", user.Username, user.Status, domain.ErrForbidden)
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

// Register creates a staff account. Owner only.
func (uc *UseCase) Register(ctx context.Context, actor entity.Actor, in dto.RegisterUserRequest) (*dto.UserResponse, error) {
	if !actor.HasRole(entity.RoleOwner) {
		return nil, fmt.Errorf("user registration is owner-only: %w", domain.ErrForbidden)
	}

	username := strings.TrimSpace(strings.ToLower(in.Username))
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrValidation)
	}
	if !entity.ValidRole(in.Role) {
		return nil, fmt.Errorf("role %q: %w", in.Role, domain.ErrValidation)
	}

	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("username %s already exists: %w", username, domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ChangePassword rotates the actor's own password after verifying the
// current one.
func (uc *UseCase) ChangePassword(ctx context.Context, actor entity.Actor, in dto.ChangePasswordRequest) error {
	user, err := uc.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", actor.ID, domain.ErrNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return fmt.Errorf("current password mismatch: %w", domain.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	return uc.userRepo.Update(ctx, user)
}
