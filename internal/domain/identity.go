package domain

import (
	"time"

	"github.com/lib/pq"
)

// Identity is the persistent record behind a verification token. Created only
// by the verification endpoint; afterwards the observed-IP set is the sole
// mutable field.
type Identity struct {
	Token     string // secret, cookie-bound, primary lookup key
	Id        IdentityId
	Ips       pq.StringArray
	CreatedAt time.Time
	Cap       *string // trusted display name, set out-of-band
	CapColor  *string
}

// HasIp reports whether addr was already observed for this identity.
func (i *Identity) HasIp(addr string) bool {
	for _, ip := range i.Ips {
		if ip == addr {
			return true
		}
	}
	return false
}
