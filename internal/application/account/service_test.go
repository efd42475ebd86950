package account

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jobhub/identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Create(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAccountStore) GetByEmail(ctx context.Context, role, email string) (*domain.Account, error) {
	args := m.Called(ctx, role, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) GetByPhoneOrEmail(ctx context.Context, role, phone, email string) (*domain.Account, error) {
	args := m.Called(ctx, role, phone, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) SetVerified(ctx context.Context, role, email string) error {
	return m.Called(ctx, role, email).Error(0)
}
func (m *mockAccountStore) SetPasswordHash(ctx context.Context, role, email, hash string) error {
	return m.Called(ctx, role, email, hash).Error(0)
}

type mockOTPService struct{ mock.Mock }

func (m *mockOTPService) Issue(ctx context.Context, purpose, identifier, subject string) error {
	return m.Called(ctx, purpose, identifier, subject).Error(0)
}
func (m *mockOTPService) Verify(ctx context.Context, purpose, identifier, code string) error {
	return m.Called(ctx, purpose, identifier, code).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(accountID, role, email string) (string, error) {
	args := m.Called(accountID, role, email)
	return args.String(0), args.Error(1)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

func newTestService(as *mockAccountStore, os *mockOTPService, jp *mockJWTSigner, sms smsSender) Service {
	return NewService(ServiceDeps{
		AccountRepo: as,
		OTP:         os,
		JWTProvider: jp,
		SMSSender:   sms,
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func notFoundErr() error {
	return fmt.Errorf("account not found: %w", domain.ErrNotFound)
}

// --- Register ---

func registerReq() domain.RegisterRequest {
	return domain.RegisterRequest{
		Role:     domain.RoleOrganization,
		Email:    "a@x.com",
		Phone:    "123",
		Password: "p1-secret",
		Profile:  domain.Profile{DisplayName: "Acme"},
	}
}

func TestRegister_DuplicateEmailOrPhone_Conflict(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByPhoneOrEmail", mock.Anything, domain.RoleOrganization, "123", "a@x.com").
		Return(&domain.Account{}, nil)

	svc := newTestService(as, &mockOTPService{}, nil, nil)
	_, err := svc.Register(context.Background(), registerReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	as.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_HappyPath_CreatesUnverifiedWithHash(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}

	as.On("GetByPhoneOrEmail", mock.Anything, domain.RoleOrganization, "123", "a@x.com").
		Return(nil, notFoundErr())
	as.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Role == domain.RoleOrganization &&
			a.Email.Address == "a@x.com" &&
			!a.Email.Verified &&
			a.AccountID != "" &&
			a.PasswordHash != "" &&
			a.PasswordHash != "p1-secret" &&
			bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("p1-secret")) == nil
	})).Return(nil)
	os.On("Issue", mock.Anything, domain.PurposeEmailVerification, "a@x.com", mock.Anything).Return(nil)

	svc := newTestService(as, os, nil, nil)
	a, err := svc.Register(context.Background(), registerReq())

	require.NoError(t, err)
	require.NotNil(t, a)
	assert.False(t, a.Email.Verified)
	as.AssertExpectations(t)
	os.AssertExpectations(t)
}

func TestRegister_SendFails_AccountStillPersisted(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}

	as.On("GetByPhoneOrEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, notFoundErr())
	as.On("Create", mock.Anything, mock.Anything).Return(nil)
	os.On("Issue", mock.Anything, domain.PurposeEmailVerification, "a@x.com", mock.Anything).
		Return(fmt.Errorf("send otp: %w", domain.ErrNotificationFailed))

	svc := newTestService(as, os, nil, nil)
	a, err := svc.Register(context.Background(), registerReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotificationFailed))
	assert.NotNil(t, a) // the record exists; the user can trigger a resend via login
	as.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- VerifyRegistration ---

func TestVerifyRegistration_UnknownAccount_NotFound(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, domain.RoleIndividual, "a@x.com").Return(nil, notFoundErr())

	svc := newTestService(as, &mockOTPService{}, nil, nil)
	err := svc.VerifyRegistration(context.Background(), domain.RoleIndividual, "a@x.com", "1234")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyRegistration_WrongCode_AccountUntouched(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}

	as.On("GetByEmail", mock.Anything, domain.RoleIndividual, "a@x.com").
		Return(&domain.Account{Email: domain.EmailIdentity{Address: "a@x.com"}}, nil)
	os.On("Verify", mock.Anything, domain.PurposeEmailVerification, "a@x.com", "9999").
		Return(fmt.Errorf("verify: %w", domain.ErrOTPMismatch))

	svc := newTestService(as, os, nil, nil)
	err := svc.VerifyRegistration(context.Background(), domain.RoleIndividual, "a@x.com", "9999")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPMismatch))
	as.AssertNotCalled(t, "SetVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyRegistration_CorrectCode_SetsVerified(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}

	as.On("GetByEmail", mock.Anything, domain.RoleIndividual, "a@x.com").
		Return(&domain.Account{Email: domain.EmailIdentity{Address: "a@x.com"}}, nil)
	os.On("Verify", mock.Anything, domain.PurposeEmailVerification, "a@x.com", "1234").Return(nil)
	as.On("SetVerified", mock.Anything, domain.RoleIndividual, "a@x.com").Return(nil)

	svc := newTestService(as, os, nil, nil)
	err := svc.VerifyRegistration(context.Background(), domain.RoleIndividual, "a@x.com", "1234")

	require.NoError(t, err)
	as.AssertExpectations(t)
}

// --- Login ---

func TestLogin_UnknownAccount_NotFound(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, domain.RoleIndividual, "a@x.com").Return(nil, notFoundErr())

	svc := newTestService(as, &mockOTPService{}, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.RoleIndividual, "a@x.com", "p1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLogin_Unverified_ResendsAndRefuses(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}

	as.On("GetByEmail", mock.Anything, domain.RoleIndividual, "a@x.com").Return(&domain.Account{
		Email:        domain.EmailIdentity{Address: "a@x.com", Verified: false},
		PasswordHash: hashOf(t, "p1"),
	}, nil)
	os.On("Issue", mock.Anything, domain.PurposeEmailVerification, "a@x.com", mock.Anything).Return(nil)

	svc := newTestService(as, os, nil, nil)
	// Correct password, still refused: verification gates login.
	_, _, err := svc.Login(context.Background(), domain.RoleIndividual, "a@x.com", "p1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotVerified))
	os.AssertExpectations(t)
}

func TestLogin_Unverified_CooldownSuppressesResend(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}

	as.On("GetByEmail", mock.Anything, domain.RoleIndividual, "a@x.com").Return(&domain.Account{
		Email:        domain.EmailIdentity{Address: "a@x.com", Verified: false},
		PasswordHash: hashOf(t, "p1"),
	}, nil)
	os.On("Issue", mock.Anything, domain.PurposeEmailVerification, "a@x.com", mock.Anything).
		Return(fmt.Errorf("issue: %w", domain.ErrCooldown))

	svc := newTestService(as, os, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.RoleIndividual, "a@x.com", "p1")

	// The cooldown never leaks out; the caller just sees the gate.
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotVerified))
}

func TestLogin_WrongPassword_InvalidCredentials(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, domain.RoleIndividual, "a@x.com").Return(&domain.Account{
		Email:        domain.EmailIdentity{Address: "a@x.com", Verified: true},
		PasswordHash: hashOf(t, "p1"),
	}, nil)

	svc := newTestService(as, &mockOTPService{}, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.RoleIndividual, "a@x.com", "wrong")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestLogin_HappyPath_IssuesToken(t *testing.T) {
	as := &mockAccountStore{}
	jp := &mockJWTSigner{}

	as.On("GetByEmail", mock.Anything, domain.RoleIndividual, "a@x.com").Return(&domain.Account{
		AccountID:    "acc1",
		Role:         domain.RoleIndividual,
		Email:        domain.EmailIdentity{Address: "a@x.com", Verified: true},
		PasswordHash: hashOf(t, "p1"),
	}, nil)
	jp.On("Sign", "acc1", domain.RoleIndividual, "a@x.com").Return("signed-token", nil)

	svc := newTestService(as, &mockOTPService{}, jp, nil)
	token, a, err := svc.Login(context.Background(), domain.RoleIndividual, "a@x.com", "p1")

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	require.NotNil(t, a)
	assert.Equal(t, "acc1", a.AccountID)
}

// --- Password reset ---

func TestRequestPasswordReset_UnknownAccount_NotFound(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, domain.RoleOrganization, "a@x.com").Return(nil, notFoundErr())

	svc := newTestService(as, &mockOTPService{}, nil, nil)
	err := svc.RequestPasswordReset(context.Background(), domain.RoleOrganization, "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRequestPasswordReset_HappyPath(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}

	as.On("GetByEmail", mock.Anything, domain.RoleOrganization, "a@x.com").
		Return(&domain.Account{Email: domain.EmailIdentity{Address: "a@x.com", Verified: true}}, nil)
	os.On("Issue", mock.Anything, domain.PurposePasswordReset, "a@x.com", mock.Anything).Return(nil)

	svc := newTestService(as, os, nil, nil)
	err := svc.RequestPasswordReset(context.Background(), domain.RoleOrganization, "a@x.com")

	require.NoError(t, err)
	os.AssertExpectations(t)
}

func TestConfirmPasswordReset_WrongCode_PasswordUntouched(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}

	as.On("GetByEmail", mock.Anything, domain.RoleOrganization, "a@x.com").
		Return(&domain.Account{Email: domain.EmailIdentity{Address: "a@x.com", Verified: true}}, nil)
	os.On("Verify", mock.Anything, domain.PurposePasswordReset, "a@x.com", "9999").
		Return(fmt.Errorf("verify: %w", domain.ErrOTPExpired))

	svc := newTestService(as, os, nil, nil)
	err := svc.ConfirmPasswordReset(context.Background(), domain.RoleOrganization, "a@x.com", "9999", "newpass-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPExpired))
	as.AssertNotCalled(t, "SetPasswordHash", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPasswordReset_HappyPath_ReplacesHashAndAlerts(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}
	sms := &mockSMSSender{}

	as.On("GetByEmail", mock.Anything, domain.RoleOrganization, "a@x.com").Return(&domain.Account{
		Email: domain.EmailIdentity{Address: "a@x.com", Verified: true},
		Phone: "123",
	}, nil)
	os.On("Verify", mock.Anything, domain.PurposePasswordReset, "a@x.com", "1234").Return(nil)
	as.On("SetPasswordHash", mock.Anything, domain.RoleOrganization, "a@x.com",
		mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpass-1")) == nil
		})).Return(nil)
	sms.On("SendSMS", mock.Anything, "123", mock.Anything).Return(nil)

	svc := newTestService(as, os, nil, sms)
	err := svc.ConfirmPasswordReset(context.Background(), domain.RoleOrganization, "a@x.com", "1234", "newpass-1")

	require.NoError(t, err)
	as.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestConfirmPasswordReset_SMSFailure_DoesNotFailReset(t *testing.T) {
	as := &mockAccountStore{}
	os := &mockOTPService{}
	sms := &mockSMSSender{}

	as.On("GetByEmail", mock.Anything, domain.RoleOrganization, "a@x.com").Return(&domain.Account{
		Email: domain.EmailIdentity{Address: "a@x.com", Verified: true},
		Phone: "123",
	}, nil)
	os.On("Verify", mock.Anything, domain.PurposePasswordReset, "a@x.com", "1234").Return(nil)
	as.On("SetPasswordHash", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, "123", mock.Anything).Return(errors.New("sns unavailable"))

	svc := newTestService(as, os, nil, sms)
	err := svc.ConfirmPasswordReset(context.Background(), domain.RoleOrganization, "a@x.com", "1234", "newpass-1")

	require.NoError(t, err)
}
