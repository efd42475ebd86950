package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jobhub/identity-api/internal/domain"
)

// Service issues and verifies one-time codes. Each (purpose, identifier)
// key holds at most one live code: issuing again overwrites the previous
// code, and a successful verify consumes it.
type Service interface {
	Issue(ctx context.Context, purpose, identifier, subject string) error
	Verify(ctx context.Context, purpose, identifier, code string) error
}

type codeStore interface {
	Put(ctx context.Context, c *domain.OneTimeCode) error
	Get(ctx context.Context, purpose, identifier string) (*domain.OneTimeCode, error)
	DeleteIfCode(ctx context.Context, purpose, identifier, code string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	codes    codeStore
	mailer   mailer
	ttl      time.Duration
	cooldown time.Duration
}

type ServiceDeps struct {
	CodeRepo codeStore
	Mailer   mailer
	TTL      time.Duration
	// Cooldown is the minimum interval between issuances for the same key.
	// Zero disables the check.
	Cooldown time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		codes:    deps.CodeRepo,
		mailer:   deps.Mailer,
		ttl:      deps.TTL,
		cooldown: deps.Cooldown,
	}
}

// Issue generates a fresh 4-digit code, emails it, and only then stores it.
// Sending first means a code the user never received is never valid: a
// transport failure leaves no code behind.
func (s *service) Issue(ctx context.Context, purpose, identifier, subject string) error {
	if s.cooldown > 0 {
		if prev, err := s.codes.Get(ctx, purpose, identifier); err == nil {
			if time.Now().Unix() < prev.IssuedAt+int64(s.cooldown.Seconds()) {
				return fmt.Errorf("code issued %ds ago: %w",
					time.Now().Unix()-prev.IssuedAt, domain.ErrCooldown)
			}
		}
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Your OTP is %s. It is valid for %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.mailer.SendEmail(identifier, subject, body); err != nil {
		return fmt.Errorf("send otp to %s: %w", identifier, domain.ErrNotificationFailed)
	}

	now := time.Now()
	return s.codes.Put(ctx, &domain.OneTimeCode{
		Identifier: identifier,
		Purpose:    purpose,
		Code:       code,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(s.ttl).Unix(),
	})
}

// Verify checks a presented code. An absent (or TTL-elapsed) code reports
// ErrOTPExpired, a present-but-unequal code reports ErrOTPMismatch and stays
// pending, and a match consumes the code before returning. Consumption is a
// compare-and-delete, so a verify racing a fresh issuance cannot delete the
// new code.
func (s *service) Verify(ctx context.Context, purpose, identifier, code string) error {
	stored, err := s.codes.Get(ctx, purpose, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("verify %s: %w", purpose, domain.ErrOTPExpired)
		}
		return err
	}
	if stored.Code != code {
		return fmt.Errorf("verify %s: %w", purpose, domain.ErrOTPMismatch)
	}
	if err := s.codes.DeleteIfCode(ctx, purpose, identifier, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The code was consumed or replaced between the read and the delete.
			return fmt.Errorf("verify %s: %w", purpose, domain.ErrOTPExpired)
		}
		return err
	}
	return nil
}

// generateCode returns a uniformly distributed 4-digit numeric string.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
