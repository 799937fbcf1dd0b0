package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Emoji struct {
	Id   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Reaction holds the raw voter set. UserIds never cross the public boundary;
// callers expose Counts() instead.
type Reaction struct {
	Emoji   Emoji    `json:"emoji"`
	UserIds []string `json:"userIds"`
}

// Reactions is an ordered set keyed by emoji name, persisted as a whole on
// the response row.
type Reactions []Reaction

func (rs Reactions) Value() (driver.Value, error) {
	if rs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(rs)
}

func (rs *Reactions) Scan(src any) error {
	if src == nil {
		*rs = Reactions{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Reactions", src)
	}
	if len(data) == 0 {
		*rs = Reactions{}
		return nil
	}
	return json.Unmarshal(data, rs)
}

func (rs Reactions) index(name string) int {
	for i := range rs {
		if rs[i].Emoji.Name == name {
			return i
		}
	}
	return -1
}

func (rs Reactions) Has(name string) bool {
	return rs.index(name) >= 0
}

// Toggle adds userId's vote for emoji, or removes it when already present.
// A reaction whose last voter leaves is dropped entirely.
func (rs Reactions) Toggle(emoji Emoji, userId string) Reactions {
	i := rs.index(emoji.Name)
	if i < 0 {
		return append(rs, Reaction{Emoji: emoji, UserIds: []string{userId}})
	}

	for j, uid := range rs[i].UserIds {
		if uid == userId {
			rs[i].UserIds = append(rs[i].UserIds[:j], rs[i].UserIds[j+1:]...)
			if len(rs[i].UserIds) == 0 {
				return append(rs[:i], rs[i+1:]...)
			}
			return rs
		}
	}

	rs[i].UserIds = append(rs[i].UserIds, userId)
	return rs
}

// ReactionCount is the outward representation: voter ids replaced by a count.
type ReactionCount struct {
	Emoji Emoji `json:"emoji"`
	Count int   `json:"count"`
}

func (rs Reactions) Counts() []ReactionCount {
	counts := make([]ReactionCount, 0, len(rs))
	for _, r := range rs {
		counts = append(counts, ReactionCount{Emoji: r.Emoji, Count: len(r.UserIds)})
	}
	return counts
}
