package domain

import "time"

type ResponseCreationData struct {
	Board         BoardId
	ThreadKey     ThreadKey
	Name          string
	Command       string
	Content       string
	Cookies       map[string]string
	IpAddress     string
	FromMonazilla bool
}

// Response identity is a random opaque token, not an ordinal. "Response
// number" references (>>N) are positional: 1-based index in created_at order
// within the thread.
type Response struct {
	Id         string
	ParentId   string // thread storage id: "{board}_{key}"
	CreatedAt  time.Time
	AuthorId   IdentityId
	ShownId    string
	Name       string
	Content    string
	Reactions  Reactions
	Attributes Attributes
	Deleted    bool
}
