package domain

// Plugin events are mutable transfer objects owned by a single pipeline
// invocation and passed by exclusive reference through each hook in turn.

// EventError is the error-signal slot a plugin can set to abort or flag the
// enclosing operation.
type EventError struct {
	Message  string
	Critical bool
}

type baseEvent struct {
	err *EventError
}

func (e *baseEvent) SetError(message string, critical bool) {
	e.err = &EventError{Message: message, Critical: critical}
}

func (e *baseEvent) Err() *EventError {
	return e.err
}

type ThreadPostEvent struct {
	baseEvent

	Board      *Board
	Title      string
	Name       string
	Command    string
	Content    string
	Attributes Attributes
	Identity   *Identity
	ShownId    string
}

type ResponsePostEvent struct {
	baseEvent

	Thread     *Thread
	Name       string
	Command    string
	Content    string
	Attributes Attributes
	Identity   *Identity
	ShownId    string
}

// RenderingResponseEvent runs per-device at delivery time; mutations affect
// the rendered copy only, never storage.
type RenderingResponseEvent struct {
	baseEvent

	Thread   *Thread
	Response *Response
	Device   Device
}
