package gocql

import (
	"context"

	cql "github.com/riverscale/cqldriver"
)

// Session wraps a *cql.Session behind the gocql.Session fluent API.
type Session struct {
	inner        *cql.Session
	skipMetadata bool
}

// Query prepares stmt against the cluster and binds values positionally,
// mirroring gocql's Session.Query (which lazily prepares on first Exec);
// this shim prepares eagerly since the underlying engine has no query
// page-size-based statement cache to piggy-back on.
func (s *Session) Query(stmt string, values ...interface{}) *Query {
	q, err := s.inner.Prepare(context.Background(), stmt)
	if !s.skipMetadata {
		q.NoSkipMetadata()
	}

	qq := &Query{ctx: context.Background(), query: q, err: err}
	if err == nil && len(values) > 0 {
		qq.Bind(values...)
	}
	return qq
}

func (s *Session) Close() {
	s.inner.Close()
}

func (s *Session) Closed() bool {
	return false
}
