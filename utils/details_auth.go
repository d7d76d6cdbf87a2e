package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// DetailsAuthCookie is the HTTP-only cookie that gates the details dashboard.
const DetailsAuthCookie = "oa_details_auth"

const defaultDetailsPassword = "KingJ@mes1928"

// DetailsPassword returns the dashboard password, falling back to the
// built-in default when DETAILS_PASSWORD is unset.
func DetailsPassword() string {
	if pw := os.Getenv("DETAILS_PASSWORD"); pw != "" {
		return pw
	}
	return defaultDetailsPassword
}

// ExpectedDetailsCookieValue derives the cookie value from the configured
// password. The cookie carries this keyed hash, never the password itself.
func ExpectedDetailsCookieValue() string {
	sum := sha256.Sum256([]byte("details:" + DetailsPassword()))
	return hex.EncodeToString(sum[:])
}

// IsValidDetailsCookie compares a presented cookie value against the
// expected derived value.
func IsValidDetailsCookie(cookieValue string) bool {
	if cookieValue == "" {
		return false
	}
	return cookieValue == ExpectedDetailsCookieValue()
}

// CheckDetailsPassword verifies a login attempt. When
// DETAILS_PASSWORD_BCRYPT is set the stored bcrypt hash wins; otherwise the
// password is compared directly against DETAILS_PASSWORD.
func CheckDetailsPassword(password string) bool {
	if password == "" {
		return false
	}
	if hash := os.Getenv("DETAILS_PASSWORD_BCRYPT"); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	return password == DetailsPassword()
}
