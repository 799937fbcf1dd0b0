package domain

type (
	BoardId    = string
	ThreadKey  = int64
	IdentityId = string
)

// Device is the delivery surface a response is being rendered for.
type Device int

const (
	DeviceOfficialClient Device = iota
	DeviceMonazilla             // legacy fixed-column text protocol readers
)
