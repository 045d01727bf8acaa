package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/db/models"
	pkgerrors "github.com/magusbylili/storefront-backend/pkg/errors"
	"github.com/magusbylili/storefront-backend/pkg/security"
)

type stubResetRepo struct {
	byEmail map[string]*models.User
	byToken map[string]*models.User
}

func newStubResetRepo(users ...*models.User) *stubResetRepo {
	r := &stubResetRepo{
		byEmail: map[string]*models.User{},
		byToken: map[string]*models.User{},
	}
	for _, u := range users {
		r.byEmail[u.Email] = u
		if u.ResetToken != nil {
			r.byToken[*u.ResetToken] = u
		}
	}
	return r
}

func (r *stubResetRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubResetRepo) FindByResetToken(_ context.Context, token string, now time.Time) (*models.User, error) {
	u, ok := r.byToken[token]
	if !ok || u.ResetExpiresAt == nil || !u.ResetExpiresAt.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubResetRepo) SetResetToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	for _, u := range r.byEmail {
		if u.ID == id {
			u.ResetToken = &token
			u.ResetExpiresAt = &expiresAt
			r.byToken[token] = u
		}
	}
	return nil
}

func (r *stubResetRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	for _, u := range r.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			if u.ResetToken != nil {
				delete(r.byToken, *u.ResetToken)
			}
			u.ResetToken = nil
			u.ResetExpiresAt = nil
		}
	}
	return nil
}

type stubMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *stubMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func buildResetService(t *testing.T, repo *stubResetRepo, mail *stubMailer) PasswordResetService {
	t.Helper()
	svc, err := NewPasswordResetService(PasswordResetServiceParams{
		UserRepo:       repo,
		Mailer:         mail,
		PasswordConfig: testPasswordCfg(),
		Storefront:     config.StorefrontConfig{BaseURL: "https://magusbylili.com"},
	})
	if err != nil {
		t.Fatalf("build reset service: %v", err)
	}
	return svc
}

func TestRequestResetSendsLink(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Lili", Email: "lili@example.com"}
	repo := newStubResetRepo(user)
	mail := &stubMailer{}
	svc := buildResetService(t, repo, mail)

	if err := svc.RequestReset(context.Background(), PasswordResetRequest{Email: "LILI@example.com"}); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	if user.ResetToken == nil || user.ResetExpiresAt == nil {
		t.Fatalf("expected reset token stored")
	}
	if !user.ResetExpiresAt.After(time.Now().Add(50 * time.Minute)) {
		t.Fatalf("expected roughly one hour expiry, got %v", user.ResetExpiresAt)
	}
	if len(mail.sent) != 1 || mail.sent[0].To != user.Email {
		t.Fatalf("expected one mail to the user, got %v", mail.sent)
	}
	if !strings.Contains(mail.sent[0].Body, "https://magusbylili.com/reset-password?token="+*user.ResetToken) {
		t.Fatalf("expected reset link in body")
	}
}

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	repo := newStubResetRepo()
	mail := &stubMailer{}
	svc := buildResetService(t, repo, mail)

	if err := svc.RequestReset(context.Background(), PasswordResetRequest{Email: "ghost@example.com"}); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("expected no mail for unknown email")
	}
}

func TestRequestResetMailFailureStaysSilent(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Lili", Email: "lili@example.com"}
	repo := newStubResetRepo(user)
	mail := &stubMailer{err: errors.New("smtp dial failed")}
	svc := buildResetService(t, repo, mail)

	// the response must be identical for known and unknown addresses, even
	// when the mail transport is down
	if err := svc.RequestReset(context.Background(), PasswordResetRequest{Email: user.Email}); err != nil {
		t.Fatalf("expected silent success despite mail failure, got %v", err)
	}
	if err := svc.RequestReset(context.Background(), PasswordResetRequest{Email: "ghost@example.com"}); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
	if user.ResetToken == nil {
		t.Fatalf("expected reset token stored so a later retry can still confirm")
	}
}

func TestConfirmReset(t *testing.T) {
	token := "reset-token-abc"
	expires := time.Now().UTC().Add(30 * time.Minute)
	user := &models.User{
		ID:             uuid.New(),
		Email:          "lili@example.com",
		ResetToken:     &token,
		ResetExpiresAt: &expires,
	}
	repo := newStubResetRepo(user)
	svc := buildResetService(t, repo, &stubMailer{})

	if err := svc.ConfirmReset(context.Background(), PasswordResetConfirmRequest{
		Token:    token,
		Password: "new-secret-password",
	}); err != nil {
		t.Fatalf("confirm reset: %v", err)
	}

	ok, err := security.VerifyPassword("new-secret-password", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected new password to verify")
	}
	if user.ResetToken != nil {
		t.Fatalf("expected reset token cleared")
	}

	// token is single-use
	err = svc.ConfirmReset(context.Background(), PasswordResetConfirmRequest{
		Token:    token,
		Password: "another-password",
	})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for reused token, got %v", err)
	}
}

func TestConfirmResetExpiredToken(t *testing.T) {
	token := "stale-token"
	expires := time.Now().UTC().Add(-time.Minute)
	user := &models.User{
		ID:             uuid.New(),
		Email:          "lili@example.com",
		ResetToken:     &token,
		ResetExpiresAt: &expires,
	}
	repo := newStubResetRepo(user)
	svc := buildResetService(t, repo, &stubMailer{})

	err := svc.ConfirmReset(context.Background(), PasswordResetConfirmRequest{
		Token:    token,
		Password: "new-secret-password",
	})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}
