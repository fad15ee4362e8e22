package transport

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ClusterSnapshot is an immutable view of cluster topology, swapped in
// atomically by the background refresh loop so query execution never
// observes a half-updated Ring (spec §5: "node discovery and topology are
// out of scope beyond reading system tables already fetched").
type ClusterSnapshot struct {
	Nodes []*Node
	Ring  Ring
}

// Cluster owns the set of Node connections and the atomically-swapped
// topology snapshot queries read from.
type Cluster struct {
	cfg      ConnConfig
	policy   HostSelectionPolicy
	events   []string
	snapshot atomic.Value // *ClusterSnapshot

	refreshCancel context.CancelFunc
}

// NewCluster dials every seed host, builds the initial token-ring
// snapshot (one position per up node, see buildRing), and starts a
// background topology refresh loop.
func NewCluster(ctx context.Context, cfg ConnConfig, policy HostSelectionPolicy, events []string, hosts ...string) (*Cluster, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("transport: no hosts given")
	}

	c := &Cluster{cfg: cfg, policy: policy, events: events}

	var nodes []*Node
	for _, addr := range hosts {
		n := &Node{addr: addr}
		n.Init(ctx, cfg)
		nodes = append(nodes, n)
	}

	ring, err := buildRing(ctx, nodes)
	if err != nil {
		for _, n := range nodes {
			n.Close()
		}
		return nil, fmt.Errorf("transport: building initial token ring: %w", err)
	}

	c.snapshot.Store(&ClusterSnapshot{Nodes: nodes, Ring: ring})

	refreshCtx, cancel := context.WithCancel(context.Background())
	c.refreshCancel = cancel
	go c.refreshLoop(refreshCtx)

	return c, nil
}

// buildRing assigns each up node a single ring position derived from its
// address. Real vnode-aware discovery (reading the token list out of
// system.peers) is left to a follow-up since the spec scopes topology
// discovery out beyond routing already-known nodes.
func buildRing(_ context.Context, nodes []*Node) (Ring, error) {
	var ring Ring
	for _, n := range nodes {
		if !n.IsUp() {
			continue
		}
		ring = append(ring, RingEntry{node: n, token: MurmurToken([]byte(n.addr))})
	}
	sort.Sort(ring)
	return ring, nil
}

func (c *Cluster) Snapshot() *ClusterSnapshot {
	return c.snapshot.Load().(*ClusterSnapshot)
}

func (c *Cluster) Policy() HostSelectionPolicy {
	return c.policy
}

// NewQueryInfo builds QueryInfo for a statement with no usable partition
// key (full round-robin / DC-aware selection, no token awareness).
func (c *Cluster) NewQueryInfo() QueryInfo {
	return QueryInfo{snapshot: c.Snapshot()}
}

// NewTokenAwareQueryInfo builds QueryInfo for a statement whose partition
// key hashed to token, scoped to keyspace (reserved for future
// per-keyspace replication strategy lookups).
func (c *Cluster) NewTokenAwareQueryInfo(token Token, keyspace string) (QueryInfo, error) {
	return QueryInfo{
		token:      token,
		tokenAware: true,
		keyspace:   keyspace,
		snapshot:   c.Snapshot(),
	}, nil
}

func (c *Cluster) refreshLoop(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap := c.Snapshot()
			ring, err := buildRing(ctx, snap.Nodes)
			if err != nil {
				continue
			}
			c.snapshot.Store(&ClusterSnapshot{Nodes: snap.Nodes, Ring: ring})
		}
	}
}

// RefreshTopology forces an immediate re-read of the token ring, rather
// than waiting for the background tick.
func (c *Cluster) RefreshTopology(ctx context.Context) error {
	snap := c.Snapshot()
	ring, err := buildRing(ctx, snap.Nodes)
	if err != nil {
		return err
	}
	c.snapshot.Store(&ClusterSnapshot{Nodes: snap.Nodes, Ring: ring})
	return nil
}

// UseKeyspace issues USE across every live node in the cluster (spec §6's
// use_keyspace must "issue USE across the pool").
func (c *Cluster) UseKeyspace(ctx context.Context, keyspace string, caseSensitive bool) error {
	nodes := c.Snapshot().Nodes

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		live     int
	)
	for _, n := range nodes {
		if !n.IsUp() {
			continue
		}
		live++
		wg.Add(1)
		go func(n *Node) {
			defer wg.Done()
			if err := n.UseKeyspace(ctx, keyspace, caseSensitive); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()

	if live == 0 {
		return fmt.Errorf("transport: no live nodes to use keyspace %q on", keyspace)
	}
	return firstErr
}

func (c *Cluster) Close() {
	c.refreshCancel()
	for _, n := range c.Snapshot().Nodes {
		n.Close()
	}
}
