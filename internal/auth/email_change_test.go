package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/db/models"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
)

type stubEmailChangeRepo struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User
	byToken map[string]*models.User
}

func newStubEmailChangeRepo(users ...*models.User) *stubEmailChangeRepo {
	r := &stubEmailChangeRepo{
		byID:    map[uuid.UUID]*models.User{},
		byEmail: map[string]*models.User{},
		byToken: map[string]*models.User{},
	}
	for _, u := range users {
		r.byID[u.ID] = u
		r.byEmail[u.Email] = u
		if u.EmailChangeToken != nil {
			r.byToken[*u.EmailChangeToken] = u
		}
	}
	return r
}

func (r *stubEmailChangeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubEmailChangeRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubEmailChangeRepo) FindByEmailChangeToken(_ context.Context, token string, now time.Time) (*models.User, error) {
	u, ok := r.byToken[token]
	if !ok || u.EmailChangeExpires == nil || !u.EmailChangeExpires.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubEmailChangeRepo) SetEmailChange(_ context.Context, id uuid.UUID, pendingEmail, token string, expiresAt time.Time) error {
	u := r.byID[id]
	u.PendingEmail = &pendingEmail
	u.EmailChangeToken = &token
	u.EmailChangeExpires = &expiresAt
	r.byToken[token] = u
	return nil
}

func (r *stubEmailChangeRepo) ApplyEmailChange(_ context.Context, id uuid.UUID, newEmail string) error {
	u := r.byID[id]
	delete(r.byEmail, u.Email)
	u.Email = newEmail
	r.byEmail[newEmail] = u
	if u.EmailChangeToken != nil {
		delete(r.byToken, *u.EmailChangeToken)
	}
	u.PendingEmail = nil
	u.EmailChangeToken = nil
	u.EmailChangeExpires = nil
	return nil
}

func buildEmailChangeService(t *testing.T, repo *stubEmailChangeRepo, mail *stubMailer) EmailChangeService {
	t.Helper()
	svc, err := NewEmailChangeService(EmailChangeServiceParams{
		UserRepo:   repo,
		Mailer:     mail,
		Storefront: config.StorefrontConfig{BaseURL: "https://magusbylili.com/"},
		GenerateToken: func(int) (string, error) {
			return "fixed-change-token", nil
		},
	})
	if err != nil {
		t.Fatalf("build email change service: %v", err)
	}
	return svc
}

func TestRequestEmailChange(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Lili", Email: "old@example.com"}
	repo := newStubEmailChangeRepo(user)
	mail := &stubMailer{}
	svc := buildEmailChangeService(t, repo, mail)

	if err := svc.RequestEmailChange(context.Background(), user.ID, EmailChangeRequest{NewEmail: "New@Example.com"}); err != nil {
		t.Fatalf("request email change: %v", err)
	}

	if user.PendingEmail == nil || *user.PendingEmail != "new@example.com" {
		t.Fatalf("expected pending email stored, got %v", user.PendingEmail)
	}
	if len(mail.sent) != 1 || mail.sent[0].To != "new@example.com" {
		t.Fatalf("expected confirmation mail to the new address, got %v", mail.sent)
	}
	if !strings.Contains(mail.sent[0].Body, "confirm-email?token=fixed-change-token") {
		t.Fatalf("expected confirmation link in body")
	}
}

func TestRequestEmailChangeTakenEmail(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "old@example.com"}
	other := &models.User{ID: uuid.New(), Email: "taken@example.com"}
	repo := newStubEmailChangeRepo(user, other)
	svc := buildEmailChangeService(t, repo, &stubMailer{})

	err := svc.RequestEmailChange(context.Background(), user.ID, EmailChangeRequest{NewEmail: "taken@example.com"})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRequestEmailChangeSameEmail(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "same@example.com"}
	repo := newStubEmailChangeRepo(user)
	svc := buildEmailChangeService(t, repo, &stubMailer{})

	err := svc.RequestEmailChange(context.Background(), user.ID, EmailChangeRequest{NewEmail: "SAME@example.com"})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmEmailChange(t *testing.T) {
	token := "change-token"
	pending := "new@example.com"
	expires := time.Now().UTC().Add(time.Hour)
	user := &models.User{
		ID:                 uuid.New(),
		Email:              "old@example.com",
		PendingEmail:       &pending,
		EmailChangeToken:   &token,
		EmailChangeExpires: &expires,
	}
	repo := newStubEmailChangeRepo(user)
	svc := buildEmailChangeService(t, repo, &stubMailer{})

	dto, err := svc.ConfirmEmailChange(context.Background(), EmailChangeConfirmRequest{Token: token})
	if err != nil {
		t.Fatalf("confirm email change: %v", err)
	}
	if dto.Email != "new@example.com" {
		t.Fatalf("expected new email applied, got %s", dto.Email)
	}

	// token is single-use
	_, err = svc.ConfirmEmailChange(context.Background(), EmailChangeConfirmRequest{Token: token})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for reused token, got %v", err)
	}
}

func TestConfirmEmailChangeExpiredToken(t *testing.T) {
	token := "stale-change-token"
	pending := "new@example.com"
	expires := time.Now().UTC().Add(-time.Minute)
	user := &models.User{
		ID:                 uuid.New(),
		Email:              "old@example.com",
		PendingEmail:       &pending,
		EmailChangeToken:   &token,
		EmailChangeExpires: &expires,
	}
	repo := newStubEmailChangeRepo(user)
	svc := buildEmailChangeService(t, repo, &stubMailer{})

	_, err := svc.ConfirmEmailChange(context.Background(), EmailChangeConfirmRequest{Token: token})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}
