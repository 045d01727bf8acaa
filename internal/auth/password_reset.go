package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/db/models"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/logger"
	"github.com/magusbylili/storefront-backend/pkg/security"
)

const (
	resetTokenBytes = 32
	resetTokenTTL   = time.Hour
)

// PasswordResetService runs the forgot-password flow.
type PasswordResetService interface {
	RequestReset(ctx context.Context, req PasswordResetRequest) error
	ConfirmReset(ctx context.Context, req PasswordResetConfirmRequest) error
}

type resetUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type mailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// PasswordResetServiceParams bundles the reset flow dependencies.
type PasswordResetServiceParams struct {
	UserRepo       resetUserRepository
	Mailer         mailSender
	Logger         *logger.Logger
	PasswordConfig config.PasswordConfig
	Storefront     config.StorefrontConfig
}

type passwordResetService struct {
	users      resetUserRepository
	mailer     mailSender
	logger     *logger.Logger
	passCfg    config.PasswordConfig
	storefront config.StorefrontConfig
}

// NewPasswordResetService constructs the forgot-password service.
func NewPasswordResetService(params PasswordResetServiceParams) (PasswordResetService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &passwordResetService{
		users:      params.UserRepo,
		mailer:     params.Mailer,
		logger:     params.Logger,
		passCfg:    params.PasswordConfig,
		storefront: params.Storefront,
	}, nil
}

// RequestReset stores a one-hour reset token and mails the link. Unknown
// emails return success so the endpoint cannot be used to enumerate accounts.
func (s *passwordResetService) RequestReset(ctx context.Context, req PasswordResetRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	token, err := security.GenerateToken(resetTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}

	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.storefront.BaseURL, "/"), token)
	body := fmt.Sprintf(
		`<p>Hola %s,</p><p>Para restablecer tu contraseña haz clic en el siguiente enlace. El enlace expira en una hora.</p><p><a href="%s">Restablecer contraseña</a></p>`,
		user.Name, link,
	)
	// a mail failure must not change the response either: the endpoint answers
	// the same whether or not the account exists
	if err := s.mailer.Send(ctx, user.Email, "Restablece tu contraseña", body); err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "sending reset mail", err)
		}
	}
	return nil
}

// ConfirmReset swaps the credential when the token is valid and unexpired.
func (s *passwordResetService) ConfirmReset(ctx context.Context, req PasswordResetConfirmRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}

	user, err := s.users.FindByResetToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "reset token is invalid or expired")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}

	hash, err := security.HashPassword(req.Password, s.passCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	// UpdatePasswordHash clears the token so it is single-use
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}
