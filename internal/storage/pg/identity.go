package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

func (s *Storage) CreateIdentity(identity domain.Identity) error {
	_, err := s.db.Exec(
		"INSERT INTO ids (token, id, ips) VALUES ($1, $2, $3)",
		identity.Token, identity.Id, identity.Ips,
	)
	if err != nil {
		return fmt.Errorf("failed to insert identity: %w", err)
	}
	return nil
}

func (s *Storage) GetIdentityByToken(token string) (domain.Identity, error) {
	var identity domain.Identity
	err := s.db.QueryRow(`
        SELECT token, id, ips, created_at, cap, cap_color
        FROM ids
        WHERE token = $1
    `, token).Scan(
		&identity.Token, &identity.Id, &identity.Ips,
		&identity.CreatedAt, &identity.Cap, &identity.CapColor,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, &internal_errors.NotFound{What: "Identity"}
		}
		return domain.Identity{}, fmt.Errorf("failed to fetch identity: %w", err)
	}
	return identity, nil
}

// AddIdentityIp records addr for the identity unless already observed.
func (s *Storage) AddIdentityIp(token, addr string) error {
	_, err := s.db.Exec(`
        UPDATE ids
        SET ips = array_append(ips, $2)
        WHERE token = $1 AND NOT ($2 = ANY (ips))
    `, token, addr)
	if err != nil {
		return fmt.Errorf("failed to record identity ip: %w", err)
	}
	return nil
}

// GrantCap sets the trusted display name for an identity. Empty cap clears
// both fields.
func (s *Storage) GrantCap(token, cap, capColor string) error {
	var capVal, colorVal any
	if cap != "" {
		capVal = cap
	}
	if capColor != "" {
		colorVal = capColor
	}
	result, err := s.db.Exec(
		"UPDATE ids SET cap = $2, cap_color = $3 WHERE token = $1",
		token, capVal, colorVal,
	)
	if err != nil {
		return fmt.Errorf("failed to grant cap: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.NotFound{What: "Identity"}
	}
	return nil
}
