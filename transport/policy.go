package transport

import "sync/atomic"

// QueryInfo is everything a HostSelectionPolicy needs to pick a node: the
// computed partition-key token (if any) and the keyspace it applies to,
// plus a cluster snapshot to pick from.
type QueryInfo struct {
	token      Token
	tokenAware bool
	keyspace   string
	snapshot   *ClusterSnapshot
}

// HostSelectionPolicy orders nodes to try for a query. Node(qi, i) returns
// the i-th node to attempt, or nil once the policy is exhausted. A policy
// must be safe for concurrent use and must not block.
type HostSelectionPolicy interface {
	Node(qi QueryInfo, i int) *Node
}

// RoundRobinPolicy cycles through every node in the cluster snapshot,
// starting from a different offset each time it's asked for index 0.
type RoundRobinPolicy struct {
	counter uint64
}

func NewRoundRobinPolicy() *RoundRobinPolicy {
	return &RoundRobinPolicy{}
}

func (p *RoundRobinPolicy) Node(qi QueryInfo, i int) *Node {
	if qi.snapshot == nil || len(qi.snapshot.Nodes) == 0 {
		return nil
	}
	nodes := qi.snapshot.Nodes
	if i >= len(nodes) {
		return nil
	}
	if i == 0 {
		atomic.AddUint64(&p.counter, 1)
	}
	offset := int(atomic.LoadUint64(&p.counter))
	return nodes[(offset+i)%len(nodes)]
}

// DCAwareRoundRobin prefers nodes in localDC, falling back to every other
// node only once the local datacenter is exhausted.
type DCAwareRoundRobin struct {
	localDC string
	counter uint64
}

func NewDCAwareRoundRobin(localDC string) *DCAwareRoundRobin {
	return &DCAwareRoundRobin{localDC: localDC}
}

func (p *DCAwareRoundRobin) Node(qi QueryInfo, i int) *Node {
	if qi.snapshot == nil {
		return nil
	}

	local := make([]*Node, 0, len(qi.snapshot.Nodes))
	remote := make([]*Node, 0, len(qi.snapshot.Nodes))
	for _, n := range qi.snapshot.Nodes {
		if n.datacenter == p.localDC {
			local = append(local, n)
		} else {
			remote = append(remote, n)
		}
	}

	if i == 0 {
		atomic.AddUint64(&p.counter, 1)
	}
	offset := int(atomic.LoadUint64(&p.counter))

	if i < len(local) {
		return local[(offset+i)%len(local)]
	}
	j := i - len(local)
	if j < len(remote) {
		return remote[(offset+j)%len(remote)]
	}
	return nil
}

// TokenAwarePolicy orders the replicas of a query's token ahead of the
// child policy's own ordering, falling back to child once replicas are
// exhausted. SimpleTokenAwarePolicy and NetworkTopologyTokenAwarePolicy
// are thin constructors selecting which replicas count (spec §5).
type TokenAwarePolicy struct {
	child            HostSelectionPolicy
	replicationFactor int
	dcReplication     map[string]int
}

// NewSimpleTokenAwarePolicy wraps child, preferring the rf replicas of
// SimpleStrategy-replicated keyspaces (a single replication factor, no
// datacenter distinction).
func NewSimpleTokenAwarePolicy(child HostSelectionPolicy, rf int) *TokenAwarePolicy {
	return &TokenAwarePolicy{child: child, replicationFactor: rf}
}

// NewNetworkTopologyTokenAwarePolicy wraps child, preferring replicas per
// NetworkTopologyStrategy's per-datacenter replication factors.
func NewNetworkTopologyTokenAwarePolicy(child HostSelectionPolicy, dcRf map[string]int) *TokenAwarePolicy {
	return &TokenAwarePolicy{child: child, dcReplication: dcRf}
}

func (p *TokenAwarePolicy) replicas(qi QueryInfo) []*Node {
	if qi.snapshot == nil || !qi.tokenAware {
		return nil
	}
	ring := qi.snapshot.Ring
	if len(ring) == 0 {
		return nil
	}

	start := ring.tokenLowerBound(qi.token)
	it := &replicaIter{ring: ring, offset: start}

	wanted := p.replicationFactor
	if p.dcReplication != nil {
		for _, rf := range p.dcReplication {
			wanted += rf
		}
	}
	if wanted <= 0 {
		wanted = 1
	}

	seen := make(map[*Node]bool)
	remaining := map[string]int{}
	for dc, rf := range p.dcReplication {
		remaining[dc] = rf
	}
	simpleRemaining := p.replicationFactor

	var out []*Node
	for len(out) < wanted {
		n := it.Next()
		if n == nil {
			break
		}
		if seen[n] {
			continue
		}

		if p.dcReplication != nil {
			if remaining[n.datacenter] <= 0 {
				continue
			}
			remaining[n.datacenter]--
		} else if p.replicationFactor > 0 {
			if simpleRemaining <= 0 {
				continue
			}
			simpleRemaining--
		}

		seen[n] = true
		out = append(out, n)
	}
	return out
}

func (p *TokenAwarePolicy) Node(qi QueryInfo, i int) *Node {
	replicas := p.replicas(qi)
	if i < len(replicas) {
		return replicas[i]
	}
	return p.child.Node(qi, i-len(replicas))
}
