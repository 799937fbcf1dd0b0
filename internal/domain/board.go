package domain

// Board is immutable after creation except through the admin tooling.
type Board struct {
	Id          BoardId
	Name        string
	Description string
	AnonName    string // display name substituted for empty FROM fields
	Attributes  Attributes
}
