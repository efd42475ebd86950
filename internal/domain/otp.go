package domain

// OTP purposes. The purpose is part of the storage key, so a registration
// code can never satisfy a password-reset check or vice versa.
const (
	PurposeEmailVerification = "email_verification"
	PurposePasswordReset     = "password_reset"
)

// OneTimeCode is a transient verification code.
// PK: identifier (email), SK: purpose.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; because TTL purges
// lazily, readers must treat an item past ExpiresAt as absent.
type OneTimeCode struct {
	Identifier string `json:"identifier" dynamodbav:"identifier"`
	Purpose    string `json:"purpose" dynamodbav:"purpose"`
	Code       string `json:"code" dynamodbav:"code"`
	IssuedAt   int64  `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt  int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
