package auth

import "crypto/subtle"

// CredentialVerifier checks an operator credential pair. The default is a
// single static pair; swapping in a real identity store must not touch the
// request-handling logic.
type CredentialVerifier interface {
	Verify(username, password string) bool
}

// StaticCredentials verifies against one operator-configured pair.
type StaticCredentials struct {
	Username string
	Password string
}

// Verify compares both fields in constant time.
func (s StaticCredentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.Password)) == 1
	return userOK && passOK
}
