package cql

import (
	"context"
	"fmt"

	"github.com/riverscale/cqldriver/frame"
	"github.com/riverscale/cqldriver/frame/request"
	"github.com/riverscale/cqldriver/transport"
)

// BatchKind selects the three CQL batch semantics (spec §3's Batch type,
// grounded on original_source/scylla/src/transport/batch.rs).
type BatchKind = request.BatchKind

const (
	LoggedBatch   = request.LoggedBatch
	UnloggedBatch = request.UnloggedBatch
	CounterBatch  = request.CounterBatch
)

// batchStatement is one entry of a Batch: either a raw query string or a
// prepared statement id, plus its bound values.
type batchStatement struct {
	content string
	id      []byte
	values  []frame.Value
}

// Batch groups several INSERT/UPDATE/DELETE statements to execute
// together. Unlike Query, a Batch has no result rows: it either applies
// or returns an error (spec §3).
type Batch struct {
	session *Session

	Kind              BatchKind
	Consistency       frame.Consistency
	SerialConsistency frame.Consistency
	Idempotent        bool

	statements []batchStatement
}

// NewBatch creates an empty batch of the given kind on this session.
func (s *Session) NewBatch(kind BatchKind) *Batch {
	return &Batch{session: s, Kind: kind, Consistency: s.cfg.DefaultConsistency}
}

// AppendStatement adds an unprepared statement with positional bound
// values to the batch.
func (b *Batch) AppendStatement(content string, values ...frame.Value) *Batch {
	b.statements = append(b.statements, batchStatement{content: content, values: values})
	return b
}

// AppendPrepared adds a prepared statement (as returned by
// Session.Prepare) with its bound values to the batch.
func (b *Batch) AppendPrepared(stmt transport.Statement, values ...frame.Value) *Batch {
	b.statements = append(b.statements, batchStatement{id: stmt.ID, values: values})
	return b
}

func (b *Batch) wireStatements() []request.BatchStatement {
	out := make([]request.BatchStatement, len(b.statements))
	for i, s := range b.statements {
		if s.id != nil {
			out[i] = request.BatchStatement{Kind: request.BatchStatementPrepared, ID: s.id, Values: s.values}
		} else {
			out[i] = request.BatchStatement{Kind: request.BatchStatementQuery, Content: s.content, Values: s.values}
		}
	}
	return out
}

// Exec sends the batch and waits for the result. Batches never carry
// result rows (spec §3): success is a nil error.
func (b *Batch) Exec(ctx context.Context) error {
	if len(b.statements) == 0 {
		return &BadQuery{Reason: "batch has no statements"}
	}

	req := &request.Batch{
		Kind:                 b.Kind,
		Statements:           b.wireStatements(),
		Consistency:          b.Consistency,
		SerialConsistency:    b.SerialConsistency,
		HasSerialConsistency: b.SerialConsistency != 0,
	}

	info := b.session.cluster.NewQueryInfo()
	var rd transport.RetryDecider
	var lastErr error

	i := 0
	n := b.session.cfg.HostSelectionPolicy.Node(info, i)
	for n != nil {
		conn, err := n.Conn(info)
		if err != nil {
			lastErr = err
			i++
			n = b.session.cfg.HostSelectionPolicy.Node(info, i)
			continue
		}

		for {
			err = conn.Batch(ctx, req)
			if err == nil {
				return nil
			}

			ri := transport.RetryInfo{Error: err, Idempotent: b.Idempotent, Consistency: b.Consistency}
			if rd == nil {
				rd = b.session.cfg.RetryPolicy.NewRetryDecider()
			}
			switch rd.Decide(ri) {
			case transport.RetrySameNode:
				continue
			case transport.RetryNextNode:
				lastErr = err
			case transport.DontRetry:
				return wrapError(err)
			}
			break
		}

		i++
		n = b.session.cfg.HostSelectionPolicy.Node(info, i)
	}

	if lastErr == nil {
		return fmt.Errorf("no connection to execute the batch on")
	}
	return wrapError(lastErr)
}
