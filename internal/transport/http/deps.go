package http

import (
	"context"

	"github.com/jobhub/identity-api/internal/domain"
)

// AccountRepository is the minimal interface the router requires from the
// credential store. All mutations are keyed by (role, email) — the natural
// identity — never by a client-supplied id.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, role, email string) (*domain.Account, error)
	GetByPhoneOrEmail(ctx context.Context, role, phone, email string) (*domain.Account, error)
	SetVerified(ctx context.Context, role, email string) error
	SetPasswordHash(ctx context.Context, role, email, hash string) error
}

// OTPRepository is the minimal interface the router requires from the
// one-time-code store.
type OTPRepository interface {
	Put(ctx context.Context, c *domain.OneTimeCode) error
	Get(ctx context.Context, purpose, identifier string) (*domain.OneTimeCode, error)
	DeleteIfCode(ctx context.Context, purpose, identifier, code string) error
}
