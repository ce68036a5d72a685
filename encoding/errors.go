package encoding

import (
	"errors"
	"fmt"

	"github.com/cstockton/go-hepmc/event"
)

var (

	// ErrMalformedLine matches any *MalformedLineError with errors.Is.
	ErrMalformedLine = errors.New(`malformed line`)

	// ErrOutOfContext matches any *OutOfContextError with errors.Is.
	ErrOutOfContext = errors.New(`record out of context`)

	// ErrInvariant matches any *InvariantError with errors.Is.
	ErrInvariant = errors.New(`event invariant violated`)

	// ErrTransport matches any *TransportError with errors.Is.
	ErrTransport = errors.New(`transport failure`)

	// ErrUnencodable is returned for an event holding values the format can not
	// represent, such as a single unit or a quoted weight name.
	ErrUnencodable = errors.New(`event can not be encoded`)

	// ErrClosed is returned when using an Encoder after Close.
	ErrClosed = errors.New(`encoder is closed`)
)

// MalformedLineError occurs when a line can not be parsed as a record: an
// unknown tag, a wrong number of tokens or an invalid number.
type MalformedLineError struct {
	Line int
	Tag  Tag
	Msg  string

	// Text is the offending line.
	Text string
}

// Error implements error.
func (e *MalformedLineError) Error() string {
	return fmt.Sprintf(`line %d: %s`, e.Line, e.Msg)
}

// Is implements errors.Is for ErrMalformedLine.
func (e *MalformedLineError) Is(target error) bool {
	return target == ErrMalformedLine
}

// OutOfContextError occurs when a well formed record appears where the stream
// does not allow it, such as a particle before any vertex.
type OutOfContextError struct {
	Line int
	Tag  Tag
	Msg  string
}

// Error implements error.
func (e *OutOfContextError) Error() string {
	return fmt.Sprintf(`line %d: %s record %s`, e.Line, e.Tag.Name(), e.Msg)
}

// Is implements errors.Is for ErrOutOfContext.
func (e *OutOfContextError) Is(target error) bool {
	return target == ErrOutOfContext
}

// InvariantError occurs when an assembled event fails event.Validate. The
// rejected event is retained for inspection.
type InvariantError struct {

	// Line is the line number of the E record of the event.
	Line  int
	Event *event.Event
	Err   *event.Violation
}

// Error implements error.
func (e *InvariantError) Error() string {
	return fmt.Sprintf(`line %d: event %d: %v`, e.Line, e.Event.Number, e.Err)
}

// Is implements errors.Is for ErrInvariant.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// Unwrap returns the underlying *event.Violation.
func (e *InvariantError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure of the underlying LineSource or LineSink. Once
// a transport error occurs the Decoder or Encoder may no longer be used.
type TransportError struct {
	Line int
	Err  error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf(`line %d: transport: %v`, e.Line, e.Err)
}

// Is implements errors.Is for ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Unwrap returns the cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}
