package gocql

import (
	"context"

	cql "github.com/riverscale/cqldriver"
)

// SingleHostQueryExecutor runs diagnostic queries against exactly one
// node, gocql-style: an ordinary Session whose only contact point is the
// first configured host. Consistency level used is ONE.
type SingleHostQueryExecutor struct {
	session *cql.Session
}

// NewSingleHostQueryExecutor connects to cfg's first host only.
func NewSingleHostQueryExecutor(cfg *ClusterConfig) (SingleHostQueryExecutor, error) {
	if len(cfg.Hosts) < 1 {
		return SingleHostQueryExecutor{}, nil
	}

	sc := cfg.sessionConfig()
	sc.Hosts = cfg.Hosts[:1]
	sc.DefaultConsistency = cql.ONE

	s, err := cql.NewSession(context.Background(), sc)
	if err != nil {
		return SingleHostQueryExecutor{}, err
	}
	return SingleHostQueryExecutor{session: s}, nil
}

func (e SingleHostQueryExecutor) Exec(stmt string, values ...interface{}) error {
	q := e.session.Query(stmt)
	q.SetConsistency(cql.ONE)
	if _, err := q.Exec(context.Background()); err != nil {
		return err
	}
	return nil
}

func (e SingleHostQueryExecutor) Iter(stmt string, values ...interface{}) *Iter {
	q := e.session.Query(stmt)
	q.SetConsistency(cql.ONE)
	it := q.Iter(context.Background())
	return &Iter{it: &it}
}

func (e SingleHostQueryExecutor) Close() {
	if e.session != nil {
		e.session.Close()
	}
}
