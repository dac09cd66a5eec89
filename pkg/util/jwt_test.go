package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func testSubject() TokenSubject {
	return TokenSubject{
		SessionID: "session-1",
		UserID:    "user-1",
		CompanyID: "company-1",
		Email:     "employer@demo",
		Role:      "EMPLOYER",
	}
}

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		subject TokenSubject
		expiry  time.Duration
	}{
		{
			name:    "Employer token",
			subject: testSubject(),
			expiry:  15 * time.Minute,
		},
		{
			name: "Verifier token",
			subject: TokenSubject{
				SessionID: "session-2",
				UserID:    "user-2",
				CompanyID: "company-1",
				Email:     "verifier@demo",
				Role:      "VERIFIER",
			},
			expiry: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.subject, testSecret, tt.expiry, time.Now())
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Contains(t, token, ".")
		})
	}
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateToken(testSubject(), testSecret, 15*time.Minute, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{
			name:    "Valid token",
			token:   token,
			secret:  testSecret,
			wantErr: nil,
		},
		{
			name:    "Invalid secret",
			token:   token,
			secret:  "wrong-secret",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Invalid token format",
			token:   "invalid.token.format",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Legacy mock token",
			token:   "mock-jwt-1700000000000",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Empty token",
			token:   "",
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				require.NotNil(t, claims)
				assert.Equal(t, "session-1", claims.SessionID())
				assert.Equal(t, "user-1", claims.UserID)
				assert.Equal(t, "company-1", claims.CompanyID)
				assert.Equal(t, "EMPLOYER", claims.Role)
			}
		})
	}
}

func TestExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	token, err := GenerateToken(testSubject(), testSecret, time.Hour, issuedAt)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestTokenClaims(t *testing.T) {
	token, err := GenerateToken(testSubject(), testSecret, 15*time.Minute, time.Now())
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "employer@demo", claims.Email)
	assert.NotNil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
	assert.True(t, claims.IssuedAt.Before(claims.ExpiresAt.Time))
}

func TestTokenWithoutSessionIsRejected(t *testing.T) {
	subject := testSubject()
	subject.SessionID = ""

	token, err := GenerateToken(subject, testSecret, 15*time.Minute, time.Now())
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
