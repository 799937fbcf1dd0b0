package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/lib/pq"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
	"github.com/14ChannelBBS/Qua/internal/verification"
)

// TokenCookie is the verification-token cookie legacy clients carry.
const TokenCookie = "2ch_X"

const publicIdAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type IdentityStorage interface {
	CreateIdentity(identity domain.Identity) error
	GetIdentityByToken(token string) (domain.Identity, error)
	AddIdentityIp(token, addr string) error
}

type Identity struct {
	storage  IdentityStorage
	verifier verification.Verifier
	siteKey  string
}

func NewIdentity(storage IdentityStorage, verifier verification.Verifier, siteKey string) *Identity {
	return &Identity{storage, verifier, siteKey}
}

// Resolve maps a submission to its identity record. The cookie token wins;
// without one, a trailing "#token" fragment in the command field is accepted
// for legacy clients and stripped from the returned command.
func (s *Identity) Resolve(command string, cookies map[string]string) (domain.Identity, string, error) {
	token := cookies[TokenCookie]
	if token == "" {
		if i := strings.LastIndex(command, "#"); i >= 0 {
			token = command[i+1:]
			command = command[:i]
		}
	}
	if token == "" {
		return domain.Identity{}, command, &internal_errors.VerificationRequired{SiteKey: s.siteKey}
	}

	identity, err := s.storage.GetIdentityByToken(token)
	if err != nil {
		var notFound *internal_errors.NotFound
		if errors.As(err, &notFound) {
			return domain.Identity{}, command, &internal_errors.VerificationRequired{SiteKey: s.siteKey}
		}
		return domain.Identity{}, command, err
	}
	return identity, command, nil
}

// Mint exchanges a passed captcha challenge for a fresh identity record.
// The only writer of new records.
func (s *Identity) Mint(ctx context.Context, challengeToken, ip string) (domain.Identity, error) {
	ok, err := s.verifier.Verify(ctx, challengeToken, ip)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to verify challenge: %w", err)
	}
	if !ok {
		return domain.Identity{}, &internal_errors.BackendError{
			Code:    "VERIFICATION_FAILED",
			Message: "認証に失敗しました。",
		}
	}

	token, err := randomToken()
	if err != nil {
		return domain.Identity{}, err
	}
	id, err := randomId(8)
	if err != nil {
		return domain.Identity{}, err
	}

	identity := domain.Identity{
		Token: token,
		Id:    id,
		Ips:   pq.StringArray{ip},
	}
	if err := s.storage.CreateIdentity(identity); err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

// RecordIp appends ip to the identity's observed set. Runs off the request
// path; failures are logged by the task pool, never surfaced to the poster.
func (s *Identity) RecordIp(token, ip string) error {
	return s.storage.AddIdentityIp(token, ip)
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func randomId(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(publicIdAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate id: %w", err)
		}
		sb.WriteByte(publicIdAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}
