package domain

import (
	"fmt"
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Board         BoardId
	Title         string
	Name          string
	Command       string
	Content       string
	Cookies       map[string]string
	IpAddress     string
	FromMonazilla bool
}

// Thread identity is composite: (Board, Key). Key doubles as the epoch-second
// allocation time; SortKey starts equal to it and gets bumped on every
// response.
type Thread struct {
	Key          ThreadKey
	Board        BoardId
	Title        string
	CreatedAt    time.Time
	SortKey      int64
	OwnerId      IdentityId
	OwnerShownId string
	Count        int // derived from the response store, never persisted
	Attributes   Attributes
	Deleted      bool
}

// StorageId is the composite key stored in the threads table and used as the
// parent_id of responses.
func (t *Thread) StorageId() string {
	return ThreadStorageId(t.Board, t.Key)
}

func ThreadStorageId(board BoardId, key ThreadKey) string {
	return fmt.Sprintf("%s_%d", board, key)
}

// MaxResponses returns the per-thread response cap, falling back to def when
// the thread has no max_responses attribute.
func (t *Thread) MaxResponses(def int) int {
	if n, ok := t.Attributes.GetInt("max_responses"); ok && n > 0 {
		return n
	}
	return def
}
