package transport

import "testing"

func nodesNamed(names ...string) []*Node {
	nodes := make([]*Node, len(names))
	for i, n := range names {
		nodes[i] = &Node{addr: n}
	}
	return nodes
}

func TestRoundRobinPolicyCyclesThroughAllNodes(t *testing.T) {
	t.Parallel()

	snap := &ClusterSnapshot{Nodes: nodesNamed("a", "b", "c")}
	p := NewRoundRobinPolicy()
	qi := QueryInfo{snapshot: snap}

	first := make([]string, 3)
	for i := 0; i < 3; i++ {
		first[i] = p.Node(qi, i).Addr()
	}

	// A distinct set covering every node, in ring order starting somewhere.
	seen := map[string]bool{}
	for _, a := range first {
		seen[a] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all 3 nodes visited in one pass, got %v", first)
	}

	if got := p.Node(qi, 3); got != nil {
		t.Fatalf("expected nil once the policy is exhausted past len(nodes), got %v", got.Addr())
	}
}

func TestRoundRobinPolicyEmptySnapshot(t *testing.T) {
	t.Parallel()

	p := NewRoundRobinPolicy()
	if got := p.Node(QueryInfo{snapshot: &ClusterSnapshot{}}, 0); got != nil {
		t.Fatalf("expected nil for an empty snapshot, got %v", got.Addr())
	}
	if got := p.Node(QueryInfo{}, 0); got != nil {
		t.Fatalf("expected nil for a nil snapshot, got %v", got.Addr())
	}
}

func TestDCAwareRoundRobinPrefersLocalBeforeFallingBackToRemote(t *testing.T) {
	t.Parallel()

	local1 := &Node{addr: "local1", datacenter: "dc1"}
	local2 := &Node{addr: "local2", datacenter: "dc1"}
	remote1 := &Node{addr: "remote1", datacenter: "dc2"}

	snap := &ClusterSnapshot{Nodes: []*Node{remote1, local1, local2}}
	p := NewDCAwareRoundRobin("dc1")
	qi := QueryInfo{snapshot: snap}

	seenLocal := map[string]bool{}
	for i := 0; i < 2; i++ {
		n := p.Node(qi, i)
		if n.datacenter != "dc1" {
			t.Fatalf("index %d: expected a dc1 node before remote ones, got %s (%s)", i, n.addr, n.datacenter)
		}
		seenLocal[n.addr] = true
	}
	if len(seenLocal) != 2 {
		t.Fatalf("expected both local nodes visited before falling back, got %v", seenLocal)
	}

	last := p.Node(qi, 2)
	if last == nil || last.datacenter != "dc2" {
		t.Fatalf("expected the remote node once local nodes are exhausted, got %v", last)
	}

	if got := p.Node(qi, 3); got != nil {
		t.Fatalf("expected nil once every node has been returned, got %v", got.addr)
	}
}

func TestTokenAwarePolicyPrefersReplicasThenFallsBackToChild(t *testing.T) {
	t.Parallel()

	n1 := &Node{addr: "n1"}
	n2 := &Node{addr: "n2"}
	n3 := &Node{addr: "n3"}

	ring := Ring{
		{node: n1, token: 10},
		{node: n2, token: 20},
		{node: n3, token: 30},
	}
	snap := &ClusterSnapshot{Nodes: []*Node{n1, n2, n3}, Ring: ring}

	child := NewRoundRobinPolicy()
	p := NewSimpleTokenAwarePolicy(child, 2)

	qi := QueryInfo{snapshot: snap, tokenAware: true, token: 15}

	first := p.Node(qi, 0)
	second := p.Node(qi, 1)
	if first == nil || second == nil {
		t.Fatal("expected two replicas ahead of the child policy's ordering")
	}
	if first.addr != "n2" {
		t.Fatalf("first replica: got %s, want n2 (first ring entry with token >= 15)", first.addr)
	}
	if second.addr != "n3" {
		t.Fatalf("second replica: got %s, want n3", second.addr)
	}
	if first == second {
		t.Fatal("replicas must be distinct nodes")
	}

	// Index 2 is past the 2 replicas: falls through to the child policy.
	third := p.Node(qi, 2)
	if third == nil {
		t.Fatal("expected the child policy to supply a node past the replica set")
	}
}

func TestTokenAwarePolicyWithoutTokenAwareQueryFallsStraightToChild(t *testing.T) {
	t.Parallel()

	n1 := &Node{addr: "n1"}
	ring := Ring{{node: n1, token: 10}}
	snap := &ClusterSnapshot{Nodes: []*Node{n1}, Ring: ring}

	child := NewRoundRobinPolicy()
	p := NewSimpleTokenAwarePolicy(child, 1)
	qi := QueryInfo{snapshot: snap, tokenAware: false}

	got := p.Node(qi, 0)
	if got == nil || got.addr != "n1" {
		t.Fatalf("expected the child policy's node, got %v", got)
	}
}

func TestRingTokenLowerBound(t *testing.T) {
	t.Parallel()

	ring := Ring{
		{token: 10}, {token: 20}, {token: 30},
	}

	testCases := []struct {
		token Token
		want  int
	}{
		{0, 0},
		{10, 0},
		{15, 1},
		{30, 2},
		{31, 0}, // wraps past the end of the ring
	}

	for _, tc := range testCases {
		if got := ring.tokenLowerBound(tc.token); got != tc.want {
			t.Errorf("tokenLowerBound(%d) = %d, want %d", tc.token, got, tc.want)
		}
	}
}

func TestReplicaIterWrapsOnceThenStops(t *testing.T) {
	t.Parallel()

	n1, n2 := &Node{addr: "n1"}, &Node{addr: "n2"}
	ring := Ring{{node: n1, token: 1}, {node: n2, token: 2}}
	it := &replicaIter{ring: ring, offset: 1}

	first := it.Next()
	second := it.Next()
	third := it.Next()

	if first != n2 || second != n1 {
		t.Fatalf("expected n2 then n1 (wrapping), got %v then %v", first.addr, second.addr)
	}
	if third != nil {
		t.Fatalf("expected nil after visiting every ring entry once, got %v", third.addr)
	}
}
