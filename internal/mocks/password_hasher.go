package mocks

import "errors"

// MockPasswordHasher implements auth.PasswordHasher without bcrypt's cost.
// Hashes are the password prefixed with "hash:".
type MockPasswordHasher struct {
	HashErr error

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

// Hash implements auth.PasswordHasher
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hash:" + password, nil
}

// Compare implements auth.PasswordHasher
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if hashedPassword != "hash:"+password {
		return errors.New("password mismatch")
	}
	return nil
}
