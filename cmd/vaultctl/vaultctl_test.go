package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"vault/internal/config"
	"vault/internal/domain"
	"vault/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	original := readPassword
	t.Cleanup(func() { readPassword = original })

	readPassword = func(fd int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestPromptPassword(t *testing.T) {
	stubPasswords(t, "Passw0rd", "Passw0rd")
	password, err := promptPassword(io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "Passw0rd", password)

	stubPasswords(t, "Passw0rd", "different")
	_, err = promptPassword(io.Discard)
	assert.EqualError(t, err, "passwords do not match")
}

func TestCreateUser(t *testing.T) {
	cfg := &config.Config{
		SecretKey:                "0123456789abcdef0123456789abcdef",
		AccessTokenExpireMinutes: 15,
		RefreshTokenExpireDays:   7,
		BcryptCost:               bcrypt.MinCost,
	}
	svc, err := service.SetupServices(cfg, service.MemoryRepositories(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, createUser(context.Background(), svc.Auth, "Admin@X.com", "Admin", "Passw0rd", &out))
	assert.Contains(t, out.String(), "created user admin (admin@x.com)")

	err = createUser(context.Background(), svc.Auth, "admin@x.com", "other", "Passw0rd", &out)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCommandTree(t *testing.T) {
	root := newRootCommand()

	for _, path := range [][]string{{"migrate", "up"}, {"migrate", "down"}, {"migrate", "status"}, {"user", "create"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	create, _, err := root.Find([]string{"user", "create"})
	require.NoError(t, err)
	assert.NotNil(t, create.Flags().Lookup("email"))
	assert.NotNil(t, create.Flags().Lookup("username"))
}
