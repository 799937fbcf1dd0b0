// Package shownid derives the daily per-board pseudonymous display id shown
// next to a post.
package shownid

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

// jst pins the day boundary: ids rotate at midnight Japan time.
var jst = time.FixedZone("Asia/Tokyo", 9*60*60)

type Generator struct {
	key []byte
}

func New(key string) *Generator {
	return &Generator{key: []byte(key)}
}

// Generate returns the 8-character display id for (ip, board) on the current
// calendar day. Rotation needs no expiry job: the date is part of the hash
// input.
func (g *Generator) Generate(ipAddress, boardId string) string {
	return g.generateAt(time.Now(), ipAddress, boardId)
}

func (g *Generator) generateAt(now time.Time, ipAddress, boardId string) string {
	data := fmt.Sprintf("%s-%s-%s", now.In(jst).Format("2006-01-02"), ipAddress, boardId)

	mac := hmac.New(sha1.New, g.key)
	mac.Write([]byte(data))
	digest := hex.EncodeToString(mac.Sum(nil))

	encoded := base64.StdEncoding.EncodeToString([]byte(digest))
	return encoded[:8]
}
