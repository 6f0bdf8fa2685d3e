package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hashService := &HashService{}

	tests := []struct {
		name        string
		password    string
		expectError bool
	}{
		{
			name:        "Valid password",
			password:    "kirt@123",
			expectError: false,
		},
		{
			name:        "Empty password",
			password:    "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hashService.HashPassword(tt.password)

			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, hash)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, hash)
				assert.NotEqual(t, tt.password, hash)
			}
		})
	}
}

func TestComparePassword(t *testing.T) {
	hashService := &HashService{}

	hash, err := hashService.HashPassword("correct-password")
	assert.NoError(t, err)

	assert.True(t, hashService.ComparePassword(hash, "correct-password"))
	assert.False(t, hashService.ComparePassword(hash, "wrong-password"))
	assert.False(t, hashService.ComparePassword("not-a-hash", "correct-password"))
}
