package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grant-desk/domain"
	"grant-desk/errors"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MySuperSafePassw0rd!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Negative comparison (wrong password)
	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_RejectsMalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-an-encoded-hash")
	req.Error(err)

	_, err = ComparePassword("whatever", "$argon2id$vX$mX$salt$hash")
	req.Error(err)
}

func TestPasswordPolicy_WrapsSentinel(t *testing.T) {
	req := require.New(t)

	// Every policy violation maps to the same rejection
	req.ErrorIs(CheckPasswordPolicy("Short1!"), errors.ErrInvalidPassword)
	req.ErrorIs(CheckPasswordPolicy(strings.Repeat("Aa1!", 19)), errors.ErrInvalidPassword)
	req.ErrorIs(CheckPasswordPolicy("nouppercase123!"), errors.ErrInvalidPassword)

	req.NoError(CheckPasswordPolicy("ComplexPass123!"))
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "ComplexPass123!"}, false},
		{"Invalid email", RegisterRequest{"notanemail", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"test@example.com", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "nouppercase123!"}, true},
		{"Password too long (edge case)", RegisterRequest{"test@example.com", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenService_GenerateAndVerify(t *testing.T) {
	req := require.New(t)
	svc := NewTokenService("test_secret_key_for_units_only", time.Hour)

	token, err := svc.Generate("applicant-42", domain.RoleUser)
	req.NoError(err)
	req.NotEmpty(token)

	participant, err := svc.Verify(token)
	req.NoError(err)
	req.Equal("applicant-42", participant.ID)
	req.Equal(domain.RoleUser, participant.Role)
}

func TestTokenService_Verify_Failures(t *testing.T) {
	svc := NewTokenService("test_secret_key_for_units_only", time.Hour)

	t.Run("should reject garbage tokens", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Verify("not-a-jwt")
		req.ErrorIs(err, errors.ErrAuthenticationFailed)
	})

	t.Run("should reject expired tokens", func(t *testing.T) {
		req := require.New(t)
		expired := NewTokenService("test_secret_key_for_units_only", -time.Minute)
		token, err := expired.Generate("applicant-42", domain.RoleUser)
		req.NoError(err)

		_, err = svc.Verify(token)
		req.ErrorIs(err, errors.ErrAuthenticationFailed)
	})

	t.Run("should reject tokens signed with another secret", func(t *testing.T) {
		req := require.New(t)
		other := NewTokenService("a_completely_different_secret", time.Hour)
		token, err := other.Generate("applicant-42", domain.RoleUser)
		req.NoError(err)

		_, err = svc.Verify(token)
		req.ErrorIs(err, errors.ErrAuthenticationFailed)
	})

	t.Run("should reject tokens carrying an unknown role", func(t *testing.T) {
		req := require.New(t)
		token, err := svc.Generate("applicant-42", domain.Role("superuser"))
		req.NoError(err)

		_, err = svc.Verify(token)
		req.ErrorIs(err, errors.ErrAuthenticationFailed)
	})
}

// BenchmarkHashPassword measures CPU/RAM impact of the Argon2id parameters
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
