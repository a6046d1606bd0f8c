package raft

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lucfreitas/raftcore/pb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePeer routes RPCs directly to another node's Server in-process, with
// an optional artificial partition so tests can simulate network failures
// without touching a real socket.
type fakePeer struct {
	target *Server

	mu        sync.Mutex
	partition bool
}

func (p *fakePeer) setPartitioned(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.partition = v
}

func (p *fakePeer) isPartitioned() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.partition
}

func (p *fakePeer) RequestVote(ctx context.Context, req *pb.RequestVoteRequest) (*pb.RequestVoteResponse, error) {
	if p.isPartitioned() {
		return nil, context.DeadlineExceeded
	}
	return p.target.RequestVote(ctx, req)
}

func (p *fakePeer) AppendEntries(ctx context.Context, req *pb.AppendEntriesRequest) (*pb.AppendEntriesResponse, error) {
	if p.isPartitioned() {
		return nil, context.DeadlineExceeded
	}
	return p.target.AppendEntries(ctx, req)
}

// recordingStateMachine remembers every command applied to it, in order.
type recordingStateMachine struct {
	mu      sync.Mutex
	applied [][]byte
}

func (s *recordingStateMachine) Apply(command []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, command)
	return command, nil
}

func (s *recordingStateMachine) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied)
}

type testNode struct {
	raft    *Raft
	server  *Server
	sm      *recordingStateMachine
	peers   map[uint32]*fakePeer
	cancel  context.CancelFunc
}

// newTestCluster wires n nodes with in-process fake peers and a fast
// timing config so elections and replication converge quickly in tests.
func newTestCluster(t *testing.T, n int) map[uint32]*testNode {
	t.Helper()

	peerAddrs := make(map[uint32]string, n)
	for i := 1; i <= n; i++ {
		peerAddrs[uint32(i)] = fmt.Sprintf("fake:%d", i)
	}

	cfg := &Config{
		Peers:              peerAddrs,
		ElectionTimeoutMin: 30 * time.Millisecond,
		ElectionTimeoutMax: 60 * time.Millisecond,
		HeartbeatInterval:  10 * time.Millisecond,
		RPCTimeout:         50 * time.Millisecond,
	}

	nodes := make(map[uint32]*testNode, n)
	servers := make(map[uint32]*Server, n)

	for i := 1; i <= n; i++ {
		id := uint32(i)
		sm := &recordingStateMachine{}
		r := NewRaft(id, nil, newMemoryPersister(), sm, cfg, zap.NewNop(), nil)
		server := NewServer(r)
		servers[id] = server
		nodes[id] = &testNode{raft: r, server: server, sm: sm, peers: make(map[uint32]*fakePeer)}
	}

	for id, node := range nodes {
		peers := make(map[uint32]Peer, n-1)
		for otherID, otherServer := range servers {
			if otherID == id {
				continue
			}
			fp := &fakePeer{target: otherServer}
			node.peers[otherID] = fp
			peers[otherID] = fp
		}
		node.raft.peers = peers
	}

	for _, node := range nodes {
		ctx, cancel := context.WithCancel(context.Background())
		node.cancel = cancel
		go node.raft.Run(ctx)
	}

	t.Cleanup(func() {
		for _, node := range nodes {
			node.cancel()
		}
	})

	return nodes
}

func waitForLeader(t *testing.T, nodes map[uint32]*testNode, timeout time.Duration) *testNode {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, node := range nodes {
			admin := node.raft.Admin()
			if admin.GetRole() == Leader.String() {
				return node
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no leader elected before timeout")
	return nil
}

// assertAtMostOneLeaderPerTerm takes a simultaneous snapshot of every
// node's admin state and fails the test if two nodes claim leadership in
// the same term, the safety property quorum voting exists to guarantee.
func assertAtMostOneLeaderPerTerm(t *testing.T, nodes map[uint32]*testNode) {
	t.Helper()
	leadersByTerm := make(map[uint64][]uint32)
	for _, node := range nodes {
		admin := node.raft.Admin()
		if admin.GetRole() == Leader.String() {
			leadersByTerm[admin.GetCurrentTerm()] = append(leadersByTerm[admin.GetCurrentTerm()], node.raft.id)
		}
	}
	for term, leaders := range leadersByTerm {
		require.Lenf(t, leaders, 1, "term %d has multiple simultaneous leaders: %v", term, leaders)
	}
}

func TestCluster_ElectsASingleLeader(t *testing.T) {
	nodes := newTestCluster(t, 3)
	leader := waitForLeader(t, nodes, 2*time.Second)
	require.NotNil(t, leader)

	leaders := 0
	for _, node := range nodes {
		if node.raft.Admin().GetRole() == Leader.String() {
			leaders++
		}
	}
	require.Equal(t, 1, leaders)
	assertAtMostOneLeaderPerTerm(t, nodes)
}

func TestCluster_ReplicatesSubmittedCommands(t *testing.T) {
	nodes := newTestCluster(t, 3)
	leader := waitForLeader(t, nodes, 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := leader.raft.Submit(ctx, []byte("set x=1"))
	require.NoError(t, err)
	require.Equal(t, []byte("set x=1"), result)

	require.Eventually(t, func() bool {
		for _, node := range nodes {
			if node.sm.count() != 1 {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond, "all nodes should apply the committed entry")
}

func TestCluster_RedirectsSubmissionToLeader(t *testing.T) {
	nodes := newTestCluster(t, 3)
	leader := waitForLeader(t, nodes, 2*time.Second)

	var follower *testNode
	for _, node := range nodes {
		if node != leader {
			follower = node
			break
		}
	}
	require.NotNil(t, follower)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := follower.raft.Submit(ctx, []byte("nope"))
	require.Error(t, err)
	var nle *NotLeaderError
	require.ErrorAs(t, err, &nle)
}

func TestCluster_SurvivesLeaderCrashBeforeCommit(t *testing.T) {
	nodes := newTestCluster(t, 3)
	leader := waitForLeader(t, nodes, 2*time.Second)

	// crash the leader outright before anything has been submitted or
	// committed, so the cluster must re-elect from scratch.
	leader.cancel()

	newLeader := waitForLeader(t, nodes, 2*time.Second)
	require.NotEqual(t, leader.raft.id, newLeader.raft.id)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := newLeader.raft.Submit(ctx, []byte("set y=2"))
	require.NoError(t, err)
}

func TestCluster_StaleLeaderStepsDownOnHigherTerm(t *testing.T) {
	nodes := newTestCluster(t, 5)
	leader := waitForLeader(t, nodes, 2*time.Second)

	for _, node := range nodes {
		if node == leader {
			continue
		}
		node.peers[leader.raft.id].setPartitioned(true)
		leader.peers[node.raft.id].setPartitioned(true)
	}

	// polled from inside the Eventually callback (which testify runs on its
	// own goroutine), so a detected violation is recorded here and asserted
	// on the main test goroutine afterwards rather than failing in place.
	var violation string

	require.Eventually(t, func() bool {
		leadersByTerm := make(map[uint64][]uint32)
		for _, node := range nodes {
			admin := node.raft.Admin()
			if admin.GetRole() == Leader.String() {
				leadersByTerm[admin.GetCurrentTerm()] = append(leadersByTerm[admin.GetCurrentTerm()], node.raft.id)
			}
		}
		for term, leaders := range leadersByTerm {
			if len(leaders) > 1 {
				violation = fmt.Sprintf("term %d has multiple simultaneous leaders: %v", term, leaders)
				return true
			}
		}

		for _, node := range nodes {
			if node == leader {
				continue
			}
			if node.raft.Admin().GetRole() == Leader.String() {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "remaining nodes should elect a new leader once the old one is partitioned")
	require.Empty(t, violation)

	for _, node := range nodes {
		if node == leader {
			continue
		}
		node.peers[leader.raft.id].setPartitioned(false)
		leader.peers[node.raft.id].setPartitioned(false)
	}

	require.Eventually(t, func() bool {
		return leader.raft.Admin().GetRole() == Follower.String()
	}, 2*time.Second, 10*time.Millisecond, "the old leader should step down once it observes a higher term")
}
