package cql

import (
	"context"
	"fmt"

	"github.com/riverscale/cqldriver/frame"
	"github.com/riverscale/cqldriver/transport"
)

// EventType names a server push-notification category a session can
// REGISTER for (spec §3).
type EventType = string

const (
	TopologyChange EventType = "TOPOLOGY_CHANGE"
	StatusChange   EventType = "STATUS_CHANGE"
	SchemaChange   EventType = "SCHEMA_CHANGE"
)

// Consistency re-exports frame.Consistency at the package root so
// callers don't need to import frame for the common case.
type Consistency = frame.Consistency

const (
	ANY         = frame.ANY
	ONE         = frame.ONE
	TWO         = frame.TWO
	THREE       = frame.THREE
	QUORUM      = frame.QUORUM
	ALL         = frame.ALL
	LOCALQUORUM = frame.LOCALQUORUM
	EACHQUORUM  = frame.EACHQUORUM
	SERIAL      = frame.SERIAL
	LOCALSERIAL = frame.LOCALSERIAL
	LOCALONE    = frame.LOCALONE
)

var (
	ErrNoHosts      = fmt.Errorf("error in session config: no hosts given")
	ErrEventType    = fmt.Errorf("error in session config: invalid event type")
	ErrConsistency  = fmt.Errorf("error in session config: invalid default consistency")
	errNoConnection = fmt.Errorf("no working connection")
)

// SessionConfig configures a Session (spec §3, ambient configuration
// layer): validated eagerly and cloned before use so mutations the
// caller makes to the struct they passed in don't race the background
// topology-refresh goroutine.
type SessionConfig struct {
	Hosts               []string
	Keyspace            string
	Events              []EventType
	HostSelectionPolicy transport.HostSelectionPolicy
	RetryPolicy         transport.RetryPolicy
	Logger              transport.Logger
	transport.ConnConfig
}

// DefaultSessionConfig returns a SessionConfig with a round-robin policy
// and the default retry/connection settings, ready to Validate/NewSession.
func DefaultSessionConfig(keyspace string, hosts ...string) SessionConfig {
	return SessionConfig{
		Hosts:               hosts,
		Keyspace:            keyspace,
		HostSelectionPolicy: transport.NewRoundRobinPolicy(),
		RetryPolicy:         transport.DefaultRetryPolicy{},
		Logger:              transport.NopLogger{},
		ConnConfig:          transport.DefaultConnConfig(keyspace),
	}
}

// Clone returns a SessionConfig sharing no mutable backing arrays with
// cfg.
func (cfg SessionConfig) Clone() SessionConfig {
	v := cfg

	v.Hosts = make([]string, len(cfg.Hosts))
	copy(v.Hosts, cfg.Hosts)

	v.Events = make([]EventType, len(cfg.Events))
	copy(v.Events, cfg.Events)

	return v
}

func (cfg *SessionConfig) Validate() error {
	if len(cfg.Hosts) == 0 {
		return ErrNoHosts
	}
	for _, e := range cfg.Events {
		if e != TopologyChange && e != StatusChange && e != SchemaChange {
			return ErrEventType
		}
	}
	if cfg.DefaultConsistency > LOCALONE {
		return ErrConsistency
	}
	if cfg.Keyspace != "" {
		if err := validateKeyspaceName(cfg.Keyspace, false); err != nil {
			return err
		}
	}
	if cfg.HostSelectionPolicy == nil {
		cfg.HostSelectionPolicy = transport.NewRoundRobinPolicy()
	}
	if cfg.RetryPolicy == nil {
		cfg.RetryPolicy = transport.DefaultRetryPolicy{}
	}
	if cfg.Logger == nil {
		cfg.Logger = transport.NopLogger{}
	}
	return nil
}

// Session is one cluster connection: the engine entry point for Query,
// NewBatch and UseKeyspace (spec §3's Session).
type Session struct {
	cfg      SessionConfig
	cluster  *transport.Cluster
	keyspace string
}

// NewSession validates cfg, dials every seed host, and starts the
// background topology refresh loop.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	cfg = cfg.Clone()

	if err := cfg.Validate(); err != nil {
		return nil, &NewSessionError{Reason: err.Error()}
	}

	cluster, err := transport.NewCluster(ctx, cfg.ConnConfig, cfg.HostSelectionPolicy, cfg.Events, cfg.Hosts...)
	if err != nil {
		return nil, &NewSessionError{Reason: err.Error()}
	}

	s := &Session{
		cfg:      cfg,
		cluster:  cluster,
		keyspace: cfg.Keyspace,
	}

	return s, nil
}

// Query builds an unprepared Query for content.
func (s *Session) Query(content string) Query {
	return Query{
		session: s,
		stmt:    transport.Statement{Content: content, Consistency: s.cfg.DefaultConsistency},
		exec: func(ctx context.Context, conn *transport.Conn, stmt transport.Statement, pagingState frame.Bytes) (transport.QueryResult, error) {
			return conn.Query(ctx, stmt, pagingState)
		},
		asyncExec: func(ctx context.Context, conn *transport.Conn, stmt transport.Statement, pagingState frame.Bytes, handler transport.ResponseHandler) {
			conn.AsyncQuery(ctx, stmt, pagingState, handler)
		},
	}
}

// preparedQuery is the (stmt, exec, asyncExec) triple Query.Prepare and
// Session.Prepare install once a statement has been PREPAREd.
type preparedQuery struct {
	stmt      transport.Statement
	exec      func(context.Context, *transport.Conn, transport.Statement, frame.Bytes) (transport.QueryResult, error)
	asyncExec func(context.Context, *transport.Conn, transport.Statement, frame.Bytes, transport.ResponseHandler)
}

func (s *Session) prepareStatement(ctx context.Context, stmt transport.Statement) (preparedQuery, error) {
	info := s.cluster.NewQueryInfo()
	n := s.cfg.HostSelectionPolicy.Node(info, 0)
	if n == nil {
		return preparedQuery{}, errNoConnection
	}

	if stmt.Consistency == 0 {
		stmt.Consistency = s.cfg.DefaultConsistency
	}

	prepared, err := n.Prepare(ctx, stmt)
	if err != nil {
		return preparedQuery{}, err
	}

	return preparedQuery{
		stmt: prepared,
		exec: func(ctx context.Context, conn *transport.Conn, stmt transport.Statement, pagingState frame.Bytes) (transport.QueryResult, error) {
			return conn.Execute(ctx, stmt, pagingState)
		},
		asyncExec: func(ctx context.Context, conn *transport.Conn, stmt transport.Statement, pagingState frame.Bytes, handler transport.ResponseHandler) {
			conn.AsyncExecute(ctx, stmt, pagingState, handler)
		},
	}, nil
}

// Prepare sends a PREPARE for content and returns a Query bound to the
// resulting server-side statement id.
func (s *Session) Prepare(ctx context.Context, content string) (Query, error) {
	p, err := s.prepareStatement(ctx, transport.Statement{Content: content, Consistency: s.cfg.DefaultConsistency})
	if err != nil {
		return Query{}, wrapError(err)
	}

	return Query{session: s, stmt: p.stmt, exec: p.exec, asyncExec: p.asyncExec}, nil
}

// UseKeyspace validates name and issues USE across every live connection
// in the pool before switching the session's default keyspace (spec §6's
// use_keyspace(name, case_sensitive)). caseSensitive quotes name on the
// wire and relaxes validation to the rules a quoted identifier allows.
func (s *Session) UseKeyspace(ctx context.Context, name string, caseSensitive bool) error {
	if err := validateKeyspaceName(name, caseSensitive); err != nil {
		return err
	}
	if err := s.cluster.UseKeyspace(ctx, name, caseSensitive); err != nil {
		return wrapError(err)
	}
	s.keyspace = name
	return nil
}

// RefreshTopology forces an immediate token-ring re-read rather than
// waiting for the periodic background refresh.
func (s *Session) RefreshTopology(ctx context.Context) error {
	return s.cluster.RefreshTopology(ctx)
}

func NewRoundRobinPolicy() transport.HostSelectionPolicy {
	return transport.NewRoundRobinPolicy()
}

func NewSimpleTokenAwarePolicy(rf int) transport.HostSelectionPolicy {
	return transport.NewSimpleTokenAwarePolicy(transport.NewRoundRobinPolicy(), rf)
}

func NewNetworkTopologyTokenAwarePolicy(dcRf map[string]int) transport.HostSelectionPolicy {
	return transport.NewNetworkTopologyTokenAwarePolicy(transport.NewRoundRobinPolicy(), dcRf)
}

func NewDCAwareRoundRobinPolicy(localDC string) transport.HostSelectionPolicy {
	return transport.NewDCAwareRoundRobin(localDC)
}

func (s *Session) Close() {
	s.cfg.Logger.Println("session: close")
	s.cluster.Close()
}
