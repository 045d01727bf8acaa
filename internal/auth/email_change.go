package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/internal/users"
	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/db"
	"github.com/magusbylili/storefront-backend/pkg/db/models"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/security"
)

const (
	emailChangeTokenBytes = 32
	emailChangeTokenTTL   = time.Hour
)

// EmailChangeService runs the two-step email change flow: the new address is
// held as pending until its confirmation link is clicked.
type EmailChangeService interface {
	RequestEmailChange(ctx context.Context, userID uuid.UUID, req EmailChangeRequest) error
	ConfirmEmailChange(ctx context.Context, req EmailChangeConfirmRequest) (*users.UserDTO, error)
}

type emailChangeUserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailChangeToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	SetEmailChange(ctx context.Context, id uuid.UUID, pendingEmail, token string, expiresAt time.Time) error
	ApplyEmailChange(ctx context.Context, id uuid.UUID, newEmail string) error
}

type tokenGenerator func(byteLen int) (string, error)

// EmailChangeServiceParams bundles the email change dependencies.
type EmailChangeServiceParams struct {
	UserRepo   emailChangeUserRepository
	Mailer     mailSender
	Storefront config.StorefrontConfig
	// GenerateToken is swappable for tests; defaults to security.GenerateToken.
	GenerateToken tokenGenerator
}

type emailChangeService struct {
	users      emailChangeUserRepository
	mailer     mailSender
	storefront config.StorefrontConfig
	genToken   tokenGenerator
}

// NewEmailChangeService constructs the email change service.
func NewEmailChangeService(params EmailChangeServiceParams) (EmailChangeService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	genToken := params.GenerateToken
	if genToken == nil {
		genToken = defaultTokenGenerator
	}
	return &emailChangeService{
		users:      params.UserRepo,
		mailer:     params.Mailer,
		storefront: params.Storefront,
		genToken:   genToken,
	}, nil
}

func (s *emailChangeService) RequestEmailChange(ctx context.Context, userID uuid.UUID, req EmailChangeRequest) error {
	newEmail := strings.ToLower(strings.TrimSpace(req.NewEmail))
	if newEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "new email is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if strings.EqualFold(user.Email, newEmail) {
		return pkgerrors.New(pkgerrors.CodeValidation, "new email matches the current one")
	}

	if _, err := s.users.FindByEmail(ctx, newEmail); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email availability")
	}

	token, err := s.genToken(emailChangeTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate email change token")
	}

	expiresAt := time.Now().UTC().Add(emailChangeTokenTTL)
	if err := s.users.SetEmailChange(ctx, user.ID, newEmail, token, expiresAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store email change")
	}

	link := fmt.Sprintf("%s/confirm-email?token=%s", strings.TrimRight(s.storefront.BaseURL, "/"), token)
	body := fmt.Sprintf(
		`<p>Hola %s,</p><p>Confirma tu nueva dirección de correo haciendo clic en el siguiente enlace.</p><p><a href="%s">Confirmar correo</a></p>`,
		user.Name, link,
	)
	// the link goes to the NEW address so only its owner can confirm
	if err := s.mailer.Send(ctx, newEmail, "Confirma tu nuevo correo", body); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send confirmation mail")
	}
	return nil
}

func (s *emailChangeService) ConfirmEmailChange(ctx context.Context, req EmailChangeConfirmRequest) (*users.UserDTO, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}

	user, err := s.users.FindByEmailChangeToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "confirmation token is invalid or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup token")
	}
	if user.PendingEmail == nil || *user.PendingEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending email change")
	}

	newEmail := *user.PendingEmail
	if err := s.users.ApplyEmailChange(ctx, user.ID, newEmail); err != nil {
		if errIsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply email change")
	}

	user.Email = newEmail
	user.PendingEmail = nil
	return users.FromModel(user), nil
}

func defaultTokenGenerator(byteLen int) (string, error) {
	return security.GenerateToken(byteLen)
}

func errIsUniqueViolation(err error) bool {
	return db.IsUniqueViolation(err, "")
}
