package transport

import (
	"context"
	"fmt"

	"github.com/riverscale/cqldriver/frame"
	"go.uber.org/atomic"
)

type nodeStatus = atomic.Bool

const (
	statusDown = false
	statusUP   = true
)

// Node is one cluster member: its address, topology metadata, and the
// connection pool queries against it go through.
type Node struct {
	addr       string
	datacenter string
	rack       string
	pool       *ConnPool
	status     nodeStatus
}

func (n *Node) Addr() string { return n.addr }

func (n *Node) IsUp() bool {
	return n.status.Load()
}

func (n *Node) setStatus(v bool) {
	n.status.Store(v)
}

func (n *Node) Init(ctx context.Context, cfg ConnConfig) {
	if n.pool == nil {
		pool, err := NewConnPool(ctx, n.addr, cfg)
		if err == nil {
			n.pool = pool
			n.setStatus(statusUP)
		} else {
			n.setStatus(statusDown)
		}
	}
}

func (n *Node) Close() {
	if n.pool != nil {
		n.pool.Close()
	}
	n.setStatus(statusDown)
}

func (n *Node) LeastBusyConn() (*Conn, error) {
	if !n.IsUp() {
		return nil, fmt.Errorf("node %s is down", n.addr)
	}
	return n.pool.LeastBusyConn()
}

func (n *Node) Conn(qi QueryInfo) (*Conn, error) {
	if !n.IsUp() {
		return nil, fmt.Errorf("node %s is down", n.addr)
	}
	if qi.tokenAware {
		return n.pool.Conn(qi.token)
	}
	return n.LeastBusyConn()
}

// Prepare fans s out to every live connection in the node's pool and
// verifies they all returned the same statement id (spec invariant 2:
// "the engine MUST prepare on every connection it opens").
func (n *Node) Prepare(ctx context.Context, s Statement) (Statement, error) {
	if !n.IsUp() {
		return Statement{}, fmt.Errorf("node %s is down", n.addr)
	}
	return n.pool.PrepareAll(ctx, s)
}

// UseKeyspace issues USE on every live connection in the node's pool.
func (n *Node) UseKeyspace(ctx context.Context, keyspace string, caseSensitive bool) error {
	if !n.IsUp() {
		return fmt.Errorf("node %s is down", n.addr)
	}
	return n.pool.UseKeyspace(ctx, keyspace, caseSensitive)
}

var versionQuery = Statement{
	Content:     "SELECT schema_version FROM system.local WHERE key='local'",
	Consistency: frame.ONE,
}

func (n *Node) FetchSchemaVersion(ctx context.Context) (frame.UUID, error) {
	conn, err := n.LeastBusyConn()
	if err != nil {
		return frame.UUID{}, err
	}

	res, err := conn.Query(ctx, versionQuery, nil)
	if err != nil {
		return frame.UUID{}, err
	}

	if len(res.Rows) < 1 || len(res.Rows[0]) < 1 {
		return frame.UUID{}, fmt.Errorf("schema_version query returned no rows")
	}

	version, ok := res.Rows[0][0].(frame.CqlUUID)
	if !ok {
		return frame.UUID{}, fmt.Errorf("schema_version query returned unexpected type %T", res.Rows[0][0])
	}

	return frame.UUID(version), nil
}

// RingEntry is one node's position in the token ring.
type RingEntry struct {
	node  *Node
	token Token
}

type Ring []RingEntry

func (r Ring) Less(i, j int) bool { return r[i].token < r[j].token }
func (r Ring) Len() int           { return len(r) }
func (r Ring) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }

// replicaIter walks the ring starting at offset, wrapping once.
type replicaIter struct {
	ring    Ring
	offset  int
	fetched int
}

func (r *replicaIter) Next() *Node {
	if r.fetched >= len(r.ring) {
		return nil
	}

	ret := r.ring[r.offset].node
	r.offset++
	r.fetched++
	if r.offset >= len(r.ring) {
		r.offset = 0
	}

	return ret
}

// tokenLowerBound returns the position of the first node with a token
// greater than or equal to the given one, wrapping to 0 if there isn't one.
func (r Ring) tokenLowerBound(token Token) int {
	start, end := 0, len(r)
	for start < end {
		mid := int(uint(start+end) >> 1)
		if r[mid].token < token {
			start = mid + 1
		} else {
			end = mid
		}
	}

	if end >= len(r) {
		end = 0
	}

	return end
}
