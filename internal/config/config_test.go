package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name: "Development defaults",
			config: Config{
				Env:       "development",
				Port:      "3000",
				JWTSecret: "your-secret-key-change-in-production",
			},
			expectError: false,
		},
		{
			name: "Missing port",
			config: Config{
				Env:       "development",
				JWTSecret: "some-secret",
			},
			expectError: true,
		},
		{
			name: "Missing JWT secret",
			config: Config{
				Env:  "development",
				Port: "3000",
			},
			expectError: true,
		},
		{
			name: "Production with default secret",
			config: Config{
				Env:       "production",
				Port:      "3000",
				JWTSecret: "your-secret-key-change-in-production",
				AuthUsers: "kim:$2a$10$hash",
			},
			expectError: true,
		},
		{
			name: "Production with short secret",
			config: Config{
				Env:       "production",
				Port:      "3000",
				JWTSecret: "short",
				AuthUsers: "kim:$2a$10$hash",
			},
			expectError: true,
		},
		{
			name: "Production without principals",
			config: Config{
				Env:       "production",
				Port:      "3000",
				JWTSecret: "secure-secret-at-least-32-chars-long",
			},
			expectError: true,
		},
		{
			name: "Production fully configured",
			config: Config{
				Env:       "production",
				Port:      "3000",
				JWTSecret: "secure-secret-at-least-32-chars-long",
				AuthUsers: "kim:$2a$10$hash",
				DBSSLMode: "require",
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Principals(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		c := &Config{}
		principals, err := c.Principals()
		require.NoError(t, err)
		assert.Empty(t, principals)
	})

	t.Run("Single Pair", func(t *testing.T) {
		c := &Config{AuthUsers: "kim:$2a$10$somehash"}
		principals, err := c.Principals()
		require.NoError(t, err)
		require.Len(t, principals, 1)
		assert.Equal(t, "kim", principals[0].Username)
		assert.Equal(t, "$2a$10$somehash", principals[0].PasswordHash)
	})

	t.Run("Multiple Pairs With Spaces", func(t *testing.T) {
		c := &Config{AuthUsers: " kim:$2a$10$hash1 , lee:$2a$10$hash2 ,"}
		principals, err := c.Principals()
		require.NoError(t, err)
		require.Len(t, principals, 2)
		assert.Equal(t, "lee", principals[1].Username)
	})

	t.Run("Malformed Pair", func(t *testing.T) {
		c := &Config{AuthUsers: "kim"}
		_, err := c.Principals()
		assert.Error(t, err)
	})

	t.Run("Missing Hash", func(t *testing.T) {
		c := &Config{AuthUsers: "kim:"}
		_, err := c.Principals()
		assert.Error(t, err)
	})
}
