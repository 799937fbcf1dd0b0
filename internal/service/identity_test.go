package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

func seedIdentity(storage *mockStorage) domain.Identity {
	identity := domain.Identity{
		Token: testToken,
		Id:    "Ab3dEf7h",
		Ips:   pq.StringArray{testIp},
	}
	storage.identities[testToken] = identity
	return identity
}

func TestIdentityResolve(t *testing.T) {
	t.Run("cookie token", func(t *testing.T) {
		storage := newMockStorage()
		want := seedIdentity(storage)
		service := NewIdentity(storage, stubVerifier{ok: true}, "site-key")

		identity, command, err := service.Resolve("sage", cookiesWithToken())
		require.NoError(t, err)
		assert.Equal(t, want.Id, identity.Id)
		assert.Equal(t, "sage", command)
	})

	t.Run("command fragment token", func(t *testing.T) {
		storage := newMockStorage()
		want := seedIdentity(storage)
		service := NewIdentity(storage, stubVerifier{ok: true}, "site-key")

		identity, command, err := service.Resolve("sage#"+testToken, nil)
		require.NoError(t, err)
		assert.Equal(t, want.Id, identity.Id)
		assert.Equal(t, "sage", command, "token fragment is stripped")
	})

	t.Run("cookie wins over fragment", func(t *testing.T) {
		storage := newMockStorage()
		want := seedIdentity(storage)
		service := NewIdentity(storage, stubVerifier{ok: true}, "site-key")

		identity, command, err := service.Resolve("sage#other-token", cookiesWithToken())
		require.NoError(t, err)
		assert.Equal(t, want.Id, identity.Id)
		assert.Equal(t, "sage#other-token", command, "fragment stays when the cookie authenticates")
	})

	t.Run("no token", func(t *testing.T) {
		service := NewIdentity(newMockStorage(), stubVerifier{ok: true}, "site-key")

		_, _, err := service.Resolve("", nil)
		var required *internal_errors.VerificationRequired
		require.ErrorAs(t, err, &required)
		assert.Equal(t, "site-key", required.SiteKey)
	})

	t.Run("unknown token", func(t *testing.T) {
		service := NewIdentity(newMockStorage(), stubVerifier{ok: true}, "site-key")

		_, _, err := service.Resolve("", cookiesWithToken())
		var required *internal_errors.VerificationRequired
		require.ErrorAs(t, err, &required)
	})
}

func TestIdentityMint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		storage := newMockStorage()
		service := NewIdentity(storage, stubVerifier{ok: true}, "site-key")

		identity, err := service.Mint(context.Background(), "challenge", testIp)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), identity.Token)
		assert.Len(t, identity.Id, 8)
		assert.Equal(t, pq.StringArray{testIp}, identity.Ips)

		stored, err := storage.GetIdentityByToken(identity.Token)
		require.NoError(t, err)
		assert.Equal(t, identity.Id, stored.Id)
	})

	t.Run("rejected challenge", func(t *testing.T) {
		service := NewIdentity(newMockStorage(), stubVerifier{ok: false}, "site-key")

		_, err := service.Mint(context.Background(), "challenge", testIp)
		var backend *internal_errors.BackendError
		require.ErrorAs(t, err, &backend)
		assert.Equal(t, "VERIFICATION_FAILED", backend.Code)
	})

	t.Run("verifier failure", func(t *testing.T) {
		verifierErr := errors.New("turnstile down")
		service := NewIdentity(newMockStorage(), stubVerifier{err: verifierErr}, "site-key")

		_, err := service.Mint(context.Background(), "challenge", testIp)
		require.ErrorIs(t, err, verifierErr)
	})
}
