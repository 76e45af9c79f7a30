// Package mocks provides centralized mock implementations for testing.
//
// Most mocks use function fields: a nil field falls back to the default
// values stored on the struct, so a test only sets what it cares about.
//
//	provider := &mocks.MockIdentityProvider{
//	    CreateAccountFn: func(ctx context.Context, email, password string, md identity.Metadata) (string, error) {
//	        return "", identity.ErrAlreadyRegistered
//	    },
//	}
//
// TestifyMockUserStore is the exception; it is built on testify/mock for
// tests that assert call sequences.
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Record calls where tests need to verify them
package mocks
