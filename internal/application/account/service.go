package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobhub/identity-api/internal/domain"
	"github.com/jobhub/identity-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// OTP email subjects, one per flow.
const (
	subjectRegistration  = "Registration Verification | valid for 5 mins"
	subjectLoginResend   = "Email Verification Required | valid for 5 mins"
	subjectPasswordReset = "Password Reset | valid for 5 mins"
)

// Service orchestrates the credential lifecycle: registration with email
// ownership proof, verified-gated login, and OTP-confirmed password reset.
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error)
	VerifyRegistration(ctx context.Context, role, email, code string) error
	Login(ctx context.Context, role, email, password string) (token string, account *domain.Account, err error)
	RequestPasswordReset(ctx context.Context, role, email string) error
	ConfirmPasswordReset(ctx context.Context, role, email, code, newPassword string) error
	Get(ctx context.Context, role, email string) (*domain.Account, error)
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, role, email string) (*domain.Account, error)
	GetByPhoneOrEmail(ctx context.Context, role, phone, email string) (*domain.Account, error)
	SetVerified(ctx context.Context, role, email string) error
	SetPasswordHash(ctx context.Context, role, email, hash string) error
}

type otpService interface {
	Issue(ctx context.Context, purpose, identifier, subject string) error
	Verify(ctx context.Context, purpose, identifier, code string) error
}

type jwtSigner interface {
	Sign(accountID, role, email string) (string, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	accounts    accountStore
	otp         otpService
	jwtProvider jwtSigner
	sms         smsSender // optional, nil disables SMS alerts
}

type ServiceDeps struct {
	AccountRepo accountStore
	OTP         otpService
	JWTProvider jwtSigner
	SMSSender   smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts:    deps.AccountRepo,
		otp:         deps.OTP,
		jwtProvider: deps.JWTProvider,
		sms:         deps.SMSSender,
	}
}

// Register creates an unverified account and sends the verification code.
// The password hash is computed once, here. If the code cannot be sent the
// account still exists: the user gets a fresh code on their next login
// attempt, so a transient mail outage does not strand the registration.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error) {
	if _, err := s.accounts.GetByPhoneOrEmail(ctx, req.Role, req.Phone, req.Email); err == nil {
		return nil, fmt.Errorf("email or phone already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Role:         req.Role,
		Email:        domain.EmailIdentity{Address: req.Email, Verified: false},
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Profile:      req.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.otp.Issue(ctx, domain.PurposeEmailVerification, req.Email, subjectRegistration); err != nil {
		return a, fmt.Errorf("account created but verification code not sent: %w", domain.ErrNotificationFailed)
	}
	return a, nil
}

// VerifyRegistration consumes the registration code and flips the verified
// flag. A failed check leaves the account untouched.
func (s *service) VerifyRegistration(ctx context.Context, role, email, code string) error {
	if _, err := s.accounts.GetByEmail(ctx, role, email); err != nil {
		return fmt.Errorf("email %s is not registered: %w", email, domain.ErrNotFound)
	}
	if err := s.otp.Verify(ctx, domain.PurposeEmailVerification, email, code); err != nil {
		return err
	}
	return s.accounts.SetVerified(ctx, role, email)
}

// Login authenticates against the stored hash and issues a bearer token.
// An unverified account is never logged in, even with the right password;
// instead a fresh verification code is sent (subject to the OTP cooldown).
func (s *service) Login(ctx context.Context, role, email, password string) (string, *domain.Account, error) {
	a, err := s.accounts.GetByEmail(ctx, role, email)
	if err != nil {
		return "", nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}

	if !a.Email.Verified {
		if err := s.otp.Issue(ctx, domain.PurposeEmailVerification, email, subjectLoginResend); err != nil &&
			!errors.Is(err, domain.ErrCooldown) {
			slog.Warn("could not resend verification code", "email", email, "err", err)
		}
		return "", nil, fmt.Errorf("login blocked pending verification: %w", domain.ErrNotVerified)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("password mismatch: %w", domain.ErrInvalidCredentials)
	}

	if s.jwtProvider == nil {
		return "", nil, errors.New("token signing is not configured")
	}
	token, err := s.jwtProvider.Sign(a.AccountID, a.Role, a.Email.Address)
	if err != nil {
		return "", nil, err
	}
	return token, a, nil
}

func (s *service) RequestPasswordReset(ctx context.Context, role, email string) error {
	if _, err := s.accounts.GetByEmail(ctx, role, email); err != nil {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return s.otp.Issue(ctx, domain.PurposePasswordReset, email, subjectPasswordReset)
}

// ConfirmPasswordReset consumes the reset code and replaces the password
// hash. The old password stays valid until the code checks out.
func (s *service) ConfirmPasswordReset(ctx context.Context, role, email, code, newPassword string) error {
	a, err := s.accounts.GetByEmail(ctx, role, email)
	if err != nil {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if err := s.otp.Verify(ctx, domain.PurposePasswordReset, email, code); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.accounts.SetPasswordHash(ctx, role, email, string(hash)); err != nil {
		return err
	}

	// Best-effort security alert; delivery problems never fail the reset.
	if s.sms != nil && a.Phone != "" {
		if err := s.sms.SendSMS(ctx, a.Phone, "Your password was changed. If this wasn't you, contact support."); err != nil {
			slog.Warn("could not send password-changed SMS", "phone", a.Phone, "err", err)
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, role, email string) (*domain.Account, error) {
	return s.accounts.GetByEmail(ctx, role, email)
}
