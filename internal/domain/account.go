package domain

import "time"

// Account roles. Individuals and organizations share the same credential
// lifecycle but live in separate keyspaces of the accounts table.
const (
	RoleIndividual   = "individual"
	RoleOrganization = "organization"
)

// EmailIdentity is the account's email sub-record: the address doubles as
// the natural key within a role, and Verified gates login.
type EmailIdentity struct {
	Address  string `json:"address" dynamodbav:"address"`
	Verified bool   `json:"verified" dynamodbav:"verified"`
}

// Profile holds role-specific presentation fields. The credential core
// stores them verbatim and never inspects them beyond DisplayName.
type Profile struct {
	DisplayName   string `json:"display_name" dynamodbav:"display_name"`
	ContactPerson string `json:"contact_person,omitempty" dynamodbav:"contact_person"`
	Address       string `json:"address,omitempty" dynamodbav:"address"`
	About         string `json:"about,omitempty" dynamodbav:"about"`
}

type Account struct {
	AccountID    string        `json:"id" dynamodbav:"account_id"`
	Role         string        `json:"role" dynamodbav:"role"`
	Email        EmailIdentity `json:"email" dynamodbav:"email"`
	Phone        string        `json:"phone" dynamodbav:"phone"`
	PasswordHash string        `json:"-" dynamodbav:"password_hash"`
	Profile      Profile       `json:"profile" dynamodbav:"profile"`
	CreatedAt    time.Time     `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time     `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Role     string  `json:"role" validate:"required,oneof=individual organization"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    string  `json:"phone" validate:"required"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Profile  Profile `json:"profile"`
}

type VerifyRegistrationRequest struct {
	Role  string `json:"role" validate:"required,oneof=individual organization"`
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4,numeric"`
}

type LoginRequest struct {
	Role     string `json:"role" validate:"required,oneof=individual organization"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PasswordResetRequest struct {
	Role  string `json:"role" validate:"required,oneof=individual organization"`
	Email string `json:"email" validate:"required,email"`
}

type ConfirmPasswordResetRequest struct {
	Role        string `json:"role" validate:"required,oneof=individual organization"`
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=4,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}
