package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

func TestGenerateJWT(t *testing.T) {
	jwtService := &JWTService{}

	tests := []struct {
		name           string
		userID         int
		isAdmin        bool
		expirationTime time.Time
	}{
		{
			name:           "Valid user token",
			userID:         123,
			expirationTime: time.Now().Add(time.Hour),
		},
		{
			name:           "Valid admin token",
			userID:         1,
			isAdmin:        true,
			expirationTime: time.Now().Add(time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwtService.GenerateJWT(tt.userID, tt.isAdmin, tt.expirationTime)
			assert.NoError(t, err)
			assert.NotEmpty(t, token)
		})
	}
}

func TestValidateToken(t *testing.T) {
	jwtService := &JWTService{}

	tests := []struct {
		name        string
		tokenString string
		setup       func() string
		expectError bool
		wantAdmin   bool
	}{
		{
			name: "Valid token",
			setup: func() string {
				token, _ := jwtService.GenerateJWT(123, false, time.Now().Add(time.Hour))
				return token
			},
			expectError: false,
		},
		{
			name: "Admin flag round-trips",
			setup: func() string {
				token, _ := jwtService.GenerateJWT(7, true, time.Now().Add(time.Hour))
				return token
			},
			expectError: false,
			wantAdmin:   true,
		},
		{
			name:        "Invalid token",
			tokenString: "invalid.token.string",
			expectError: true,
		},
		{
			name: "Expired token",
			setup: func() string {
				token, _ := jwtService.GenerateJWT(123, false, time.Now().Add(-time.Hour))
				return token
			},
			expectError: true,
		},
		{
			name: "Wrong issuer",
			setup: func() string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
					UserID: 123,
					StandardClaims: jwt.StandardClaims{
						ExpiresAt: time.Now().Add(time.Hour).Unix(),
						Issuer:    "someone-else",
					},
				})
				signedToken, _ := token.SignedString(secretKey)
				return signedToken
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenString := tt.tokenString
			if tt.setup != nil {
				tokenString = tt.setup()
			}

			claims, err := jwtService.ValidateToken(tokenString)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
				assert.Equal(t, tt.wantAdmin, claims.IsAdmin)
			}
		})
	}
}
