package gocql

import "github.com/riverscale/cqldriver/transport"

// StdLogger matches transport.Logger's shape exactly (both trace back to
// the same Print/Printf/Println convention), so ClusterConfig.Logger
// takes one directly instead of needing an adapter.
type StdLogger = transport.Logger

// Logger is the package-level default used by NewSingleHostQueryExecutor
// and any ClusterConfig that leaves Logger nil.
var Logger StdLogger = transport.NopLogger{}
