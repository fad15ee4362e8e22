package gocql

import (
	"context"
	"time"

	cql "github.com/riverscale/cqldriver"
	"github.com/riverscale/cqldriver/transport"
)

// ClusterConfig mirrors the handful of gocql.ClusterConfig fields this
// driver has an equivalent for. Fields gocql callers commonly set but
// this engine has no counterpart for (SslOptions, PoolConfig,
// ConvictionPolicy, HostDialer) are intentionally absent: migrating
// code that sets them gets a compile error pointing at the gap instead
// of a silently-ignored field. NumConns is the exception: it is accepted
// but not used, since each node's pool size is fixed.
type ClusterConfig struct {
	Hosts       []string
	Keyspace    string
	Consistency Consistency
	Timeout     time.Duration
	NumConns    int

	// PolicyFn builds the driver's host-selection policy; nil defaults
	// to round robin, matching gocql's own default.
	PolicyFn func() transport.HostSelectionPolicy

	// RetryPolicy defaults to this driver's DefaultRetryPolicy if nil.
	RetryPolicy transport.RetryPolicy

	// Logger defaults to the package-level Logger (a no-op logger unless
	// replaced) if nil.
	Logger transport.Logger

	// DisableSkipMetadata mirrors gocql's field of the same name: when
	// set, NO_SKIP_METADATA is set on every prepared query.
	DisableSkipMetadata bool
}

// NewCluster returns a ClusterConfig seeded with hosts, gocql-style.
func NewCluster(hosts ...string) *ClusterConfig {
	return &ClusterConfig{
		Hosts:       hosts,
		Consistency: Quorum,
		Timeout:     10 * time.Second,
	}
}

func (cfg *ClusterConfig) sessionConfig() cql.SessionConfig {
	sc := cql.DefaultSessionConfig(cfg.Keyspace, cfg.Hosts...)
	sc.DefaultConsistency = cfg.Consistency
	if cfg.Timeout > 0 {
		sc.Timeout = cfg.Timeout
	}
	if cfg.PolicyFn != nil {
		sc.HostSelectionPolicy = cfg.PolicyFn()
	}
	if cfg.RetryPolicy != nil {
		sc.RetryPolicy = cfg.RetryPolicy
	}
	if cfg.Logger != nil {
		sc.Logger = cfg.Logger
	} else {
		sc.Logger = Logger
	}
	return sc
}

// CreateSession dials every host in cfg and returns a ready Session, the
// way gocql.ClusterConfig.CreateSession does.
func (cfg *ClusterConfig) CreateSession() (*Session, error) {
	return cfg.CreateSessionContext(context.Background())
}

func (cfg *ClusterConfig) CreateSessionContext(ctx context.Context) (*Session, error) {
	s, err := cql.NewSession(ctx, cfg.sessionConfig())
	if err != nil {
		return nil, err
	}
	return &Session{inner: s, skipMetadata: !cfg.DisableSkipMetadata}, nil
}
