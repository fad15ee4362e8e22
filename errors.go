package cql

import (
	"fmt"

	"github.com/riverscale/cqldriver/frame/response"
)

// WriteType classifies the write a WriteTimeout/WriteFailure error was
// reported against (transliterated from original_source's errors.rs
// WriteType enum).
type WriteType string

const (
	WriteTypeSimple         WriteType = "SIMPLE"
	WriteTypeBatch          WriteType = "BATCH"
	WriteTypeUnloggedBatch  WriteType = "UNLOGGED_BATCH"
	WriteTypeCounter        WriteType = "COUNTER"
	WriteTypeBatchLog       WriteType = "BATCH_LOG"
	WriteTypeCas            WriteType = "CAS"
	WriteTypeView           WriteType = "VIEW"
	WriteTypeCdc            WriteType = "CDC"
	WriteTypeOther          WriteType = "OTHER"
)

// ParseWriteType maps the wire string onto a WriteType, round-tripping
// anything the server sends that this driver doesn't know about yet
// (forward compatibility with newer server versions) instead of
// discarding it behind the WriteTypeOther constant.
func ParseWriteType(s string) WriteType {
	return WriteType(s)
}

// DBError is the Go-idiomatic rendering of the server's ERROR response
// taxonomy (CQL v4 §4.2.1, transliterated from errors.rs's DbError).
// At most one of the detail fields is non-nil, matching ErrorCode; codes
// that carry no details leave them all nil.
type DBError struct {
	ErrorCode response.ErrorCode
	Message   string

	Unavailable     *response.UnavailableDetails
	WriteTimeout    *response.WriteTimeoutDetails
	ReadTimeout     *response.ReadTimeoutDetails
	WriteFailure    *response.WriteFailureDetails
	ReadFailure     *response.ReadFailureDetails
	AlreadyExists   *response.AlreadyExistsDetails
	FunctionFailure *response.FunctionFailureDetails
	Unprepared      *response.UnpreparedDetails
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s: %s", e.name(), e.Message)
}

func (e *DBError) name() string {
	switch e.ErrorCode {
	case response.ErrServerError:
		return "server error"
	case response.ErrProtocolError:
		return "protocol error"
	case response.ErrAuthenticationError:
		return "authentication error"
	case response.ErrUnavailable:
		return "unavailable"
	case response.ErrOverloaded:
		return "overloaded"
	case response.ErrIsBootstrapping:
		return "is bootstrapping"
	case response.ErrTruncateError:
		return "truncate error"
	case response.ErrWriteTimeout:
		return "write timeout"
	case response.ErrReadTimeout:
		return "read timeout"
	case response.ErrReadFailure:
		return "read failure"
	case response.ErrFunctionFailure:
		return "function failure"
	case response.ErrWriteFailure:
		return "write failure"
	case response.ErrSyntaxError:
		return "syntax error"
	case response.ErrUnauthorized:
		return "unauthorized"
	case response.ErrInvalid:
		return "invalid"
	case response.ErrConfigError:
		return "config error"
	case response.ErrAlreadyExists:
		return "already exists"
	case response.ErrUnprepared:
		return "unprepared"
	default:
		return "other"
	}
}

// wrapError converts a CodedError surfaced by transport into the
// friendlier *DBError shape at the package boundary; anything else
// (connection failures, context cancellation) passes through unchanged.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*response.Error); ok {
		return NewDBError(e)
	}
	return err
}

// NewDBError converts a decoded *response.Error into a *DBError.
func NewDBError(e *response.Error) *DBError {
	return &DBError{
		ErrorCode:       e.ErrorCode,
		Message:         e.Message,
		Unavailable:     e.Unavailable,
		WriteTimeout:    e.WriteTimeout,
		ReadTimeout:     e.ReadTimeout,
		WriteFailure:    e.WriteFailure,
		ReadFailure:     e.ReadFailure,
		AlreadyExists:   e.AlreadyExists,
		FunctionFailure: e.FunctionFailure,
		Unprepared:      e.Unprepared,
	}
}

// QueryError wraps a failure that happened while executing a specific
// query, keeping the query text around for diagnostics without leaking
// bound parameter values (which may be sensitive).
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q failed: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// BadQuery reports a query rejected before it ever reached the wire:
// Query.Exec returns it for errors recorded by Bind (an invalid bind
// position, a value that failed to serialize), Batch.Exec for an empty
// batch. The number of bound values is not checked against the markers.
type BadQuery struct {
	Reason string
}

func (e *BadQuery) Error() string {
	return fmt.Sprintf("bad query: %s", e.Reason)
}

// NewSessionError reports a failure constructing a Session: bad config,
// no reachable hosts, and the like.
type NewSessionError struct {
	Reason string
}

func (e *NewSessionError) Error() string {
	return fmt.Sprintf("failed to create session: %s", e.Reason)
}

// BadKeyspaceNameReason enumerates why a keyspace identifier was
// rejected by UseKeyspace/NewSession, matching original_source's
// BadKeyspaceName variants.
type BadKeyspaceNameReason int

const (
	KeyspaceEmpty BadKeyspaceNameReason = iota
	KeyspaceTooLong
	KeyspaceIllegalCharacter
)

type BadKeyspaceName struct {
	Reason BadKeyspaceNameReason
	Name   string
	// Char is the offending rune, populated only for KeyspaceIllegalCharacter.
	Char rune
}

func (e *BadKeyspaceName) Error() string {
	switch e.Reason {
	case KeyspaceEmpty:
		return "keyspace name is empty"
	case KeyspaceTooLong:
		return fmt.Sprintf("keyspace name %q is longer than 48 characters", e.Name)
	case KeyspaceIllegalCharacter:
		return fmt.Sprintf("keyspace name %q contains illegal character %q: only alphanumerics and underscore are allowed", e.Name, e.Char)
	default:
		return fmt.Sprintf("invalid keyspace name %q", e.Name)
	}
}
