package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/internal/users"
	"github.com/magusbylili/storefront-backend/pkg/db/models"
	"github.com/magusbylili/storefront-backend/pkg/enums"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
)

// PromoteService elevates accounts to admin. While no admin exists yet, any
// authenticated user may promote (bootstrap); afterwards only admins can.
type PromoteService interface {
	PromoteAdmin(ctx context.Context, actorRole enums.UserRole, req PromoteRequest) (*users.UserDTO, error)
}

type promoteUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
	CountByRole(ctx context.Context, role enums.UserRole) (int64, error)
}

type promoteService struct {
	users promoteUserRepository
}

// NewPromoteService constructs the admin promotion service.
func NewPromoteService(repo promoteUserRepository) (PromoteService, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &promoteService{users: repo}, nil
}

func (s *promoteService) PromoteAdmin(ctx context.Context, actorRole enums.UserRole, req PromoteRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if actorRole != enums.UserRoleAdmin {
		adminCount, err := s.users.CountByRole(ctx, enums.UserRoleAdmin)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count admins")
		}
		if adminCount > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if user.Role == enums.UserRoleAdmin {
		return users.FromModel(user), nil
	}

	if err := s.users.UpdateRole(ctx, user.ID, enums.UserRoleAdmin); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
	}
	user.Role = enums.UserRoleAdmin
	return users.FromModel(user), nil
}
