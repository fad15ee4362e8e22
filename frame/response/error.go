package response

import (
	"fmt"

	"github.com/riverscale/cqldriver/frame"
)

// ErrorCode is the server's numeric error code (CQL v4 §4.2.1, spec §7's
// DBError taxonomy).
type ErrorCode = frame.Int

const (
	ErrServerError          ErrorCode = 0x0000
	ErrProtocolError        ErrorCode = 0x000A
	ErrAuthenticationError  ErrorCode = 0x0100
	ErrUnavailable          ErrorCode = 0x1000
	ErrOverloaded           ErrorCode = 0x1001
	ErrIsBootstrapping      ErrorCode = 0x1002
	ErrTruncateError        ErrorCode = 0x1003
	ErrWriteTimeout         ErrorCode = 0x1100
	ErrReadTimeout          ErrorCode = 0x1200
	ErrReadFailure          ErrorCode = 0x1300
	ErrFunctionFailure      ErrorCode = 0x1400
	ErrWriteFailure         ErrorCode = 0x1500
	ErrSyntaxError          ErrorCode = 0x2000
	ErrUnauthorized         ErrorCode = 0x2100
	ErrInvalid              ErrorCode = 0x2200
	ErrConfigError          ErrorCode = 0x2300
	ErrAlreadyExists        ErrorCode = 0x2400
	ErrUnprepared           ErrorCode = 0x2500
)

// CodedError is satisfied by a decoded ERROR response body; transport's
// responseAsError (spec §7) uses this to recognise a server-sent error
// among the set of decoded response types.
type CodedError interface {
	error
	Code() ErrorCode
}

var _ frame.Response = (*Error)(nil)
var _ CodedError = (*Error)(nil)

// Error is a decoded ERROR frame body: a numeric code, a human message,
// and any code-specific extra fields (spec §7's per-variant payloads).
type Error struct {
	ErrorCode ErrorCode
	Message   string

	// Populated depending on ErrorCode.
	Unavailable      *UnavailableDetails
	WriteTimeout     *WriteTimeoutDetails
	ReadTimeout      *ReadTimeoutDetails
	WriteFailure     *WriteFailureDetails
	ReadFailure      *ReadFailureDetails
	AlreadyExists    *AlreadyExistsDetails
	FunctionFailure  *FunctionFailureDetails
	Unprepared       *UnpreparedDetails
}

type UnavailableDetails struct {
	Consistency frame.Consistency
	Required    frame.Int
	Alive       frame.Int
}

type WriteTimeoutDetails struct {
	Consistency frame.Consistency
	Received    frame.Int
	Required    frame.Int
	WriteType   string
}

type ReadTimeoutDetails struct {
	Consistency frame.Consistency
	Received    frame.Int
	Required    frame.Int
	DataPresent bool
}

type WriteFailureDetails struct {
	Consistency frame.Consistency
	Received    frame.Int
	Required    frame.Int
	NumFailures frame.Int
	WriteType   string
}

type ReadFailureDetails struct {
	Consistency frame.Consistency
	Received    frame.Int
	Required    frame.Int
	NumFailures frame.Int
	DataPresent bool
}

type AlreadyExistsDetails struct {
	Keyspace string
	Table    string
}

type FunctionFailureDetails struct {
	Keyspace string
	Function string
	ArgTypes []string
}

type UnpreparedDetails struct {
	ID []byte
}

func (e *Error) OpCode() frame.OpCode {
	return frame.OpError
}

func (e *Error) Code() ErrorCode {
	return e.ErrorCode
}

func (e *Error) Error() string {
	return fmt.Sprintf("database returned an error: 0x%04x, error message: %s", e.ErrorCode, e.Message)
}

// ParseError decodes an ERROR response body (CQL v4 §4.2.1).
func ParseError(b *frame.Buffer) *Error {
	e := &Error{
		ErrorCode: b.ReadInt(),
		Message:   b.ReadLongString(),
	}

	switch e.ErrorCode {
	case ErrUnavailable:
		e.Unavailable = &UnavailableDetails{
			Consistency: b.ReadConsistency(),
			Required:    b.ReadInt(),
			Alive:       b.ReadInt(),
		}
	case ErrWriteTimeout:
		e.WriteTimeout = &WriteTimeoutDetails{
			Consistency: b.ReadConsistency(),
			Received:    b.ReadInt(),
			Required:    b.ReadInt(),
			WriteType:   b.ReadShortString(),
		}
	case ErrReadTimeout:
		e.ReadTimeout = &ReadTimeoutDetails{
			Consistency: b.ReadConsistency(),
			Received:    b.ReadInt(),
			Required:    b.ReadInt(),
			DataPresent: b.ReadByte() != 0,
		}
	case ErrWriteFailure:
		e.WriteFailure = &WriteFailureDetails{
			Consistency: b.ReadConsistency(),
			Received:    b.ReadInt(),
			Required:    b.ReadInt(),
			NumFailures: b.ReadInt(),
			WriteType:   b.ReadShortString(),
		}
	case ErrReadFailure:
		e.ReadFailure = &ReadFailureDetails{
			Consistency: b.ReadConsistency(),
			Received:    b.ReadInt(),
			Required:    b.ReadInt(),
			NumFailures: b.ReadInt(),
			DataPresent: b.ReadByte() != 0,
		}
	case ErrAlreadyExists:
		e.AlreadyExists = &AlreadyExistsDetails{
			Keyspace: b.ReadShortString(),
			Table:    b.ReadShortString(),
		}
	case ErrFunctionFailure:
		e.FunctionFailure = &FunctionFailureDetails{
			Keyspace: b.ReadShortString(),
			Function: b.ReadShortString(),
			ArgTypes: b.ReadStringList(),
		}
	case ErrUnprepared:
		e.Unprepared = &UnpreparedDetails{ID: b.ReadShortBytes()}
	}

	return e
}
