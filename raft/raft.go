// Package raft implements the consensus core of a small fixed Raft
// cluster: leader election, log replication, commit advancement under
// quorum, and sequential application to a user state machine. Transport
// framing, the allocator, CLI bootstrap, and the admin poller are external
// collaborators the package only ever talks to through interfaces.
package raft

import (
	"context"
	"time"

	"github.com/lucfreitas/raftcore/pb"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Raft is the consensus task for a single cluster member. Every mutation
// of the embedded *raftState happens inside Run's goroutine; nothing else
// touches it, which is what lets the rest of the package skip locking
// entirely.
type Raft struct {
	*raftState

	persister Persister
	sm        StateMachine

	id     uint32
	peers  map[uint32]Peer // excludes self
	config *Config
	logger *zap.Logger

	metrics *metrics

	// rpcCh carries inbound RequestVote/AppendEntries requests that have
	// already been decoded off the wire; submitCh carries client command
	// submissions; adminCh carries read-only snapshot queries. Together
	// with each role's own timer and response channels, these form the
	// single inbound message queue the consensus task reads from.
	rpcCh    chan *rpcEnvelope
	submitCh chan *clientSubmission
	adminCh  chan *adminQuery

	pending map[uint64]chan submissionResult

	// lastValidRPC is the last time we heard from a leader we accepted, or
	// granted a vote. The election timer compares against it before acting
	// on a timeout, so a stale timer firing just after a valid RPC doesn't
	// trigger an unwarranted election.
	lastValidRPC time.Time

	// runCtx is the ctx passed to Run, used to derive per-call outbound
	// RPC timeouts so a shutdown can cancel in-flight calls.
	runCtx context.Context

	// appendResultCh is valid only while role == Leader; it is where the
	// leader's broadcastAppendEntries goroutines deliver responses.
	appendResultCh chan *appendEntriesResult

	shutdownCh chan struct{}
	doneCh     chan struct{}
}

// NewRaft constructs a node. peers must not include id. reg may be nil to
// skip Prometheus registration (e.g. in tests).
func NewRaft(id uint32, peers map[uint32]Peer, persister Persister, sm StateMachine, config *Config, logger *zap.Logger, reg prometheus.Registerer) *Raft {
	return &Raft{
		raftState:  newRaftState(),
		persister:  persister,
		sm:         sm,
		id:         id,
		peers:      peers,
		config:     config,
		logger:     logger.With(zap.Uint32("id", id)),
		metrics:    newMetrics(id, reg),
		rpcCh:      make(chan *rpcEnvelope),
		submitCh:   make(chan *clientSubmission),
		adminCh:    make(chan *adminQuery),
		pending:    make(map[uint64]chan submissionResult),
		shutdownCh: make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Run loads persisted state and then drives the role machine until ctx is
// cancelled. It must be called exactly once, typically from its own
// goroutine.
func (r *Raft) Run(ctx context.Context) {
	state, err := r.persister.LoadState()
	if err != nil {
		r.logger.Fatal("failed to load persisted state", zap.Error(err))
		return
	}
	r.currentTerm = state.CurrentTerm
	r.votedFor = state.VotedFor
	if len(state.Entries) > 0 {
		r.log.entries = state.Entries
	}
	r.lastValidRPC = time.Now()
	r.runCtx = ctx

	r.logger.Info("starting raft",
		zap.Uint64("term", r.currentTerm),
		zap.Uint32("votedFor", r.votedFor),
		zap.Int("logs", r.log.Len()))

	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			close(r.shutdownCh)
			r.drainPending()
			r.logger.Info("raft stopped gracefully")
			return
		default:
		}

		switch r.role {
		case Follower:
			r.runFollower(ctx)
		case Candidate:
			r.runCandidate(ctx)
		case Leader:
			r.runLeader(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (r *Raft) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Raft) persistOrFatal() {
	if err := r.persister.SaveState(r.snapshotPersistentState()); err != nil {
		r.logger.Fatal("failed to persist raft state", zap.Error(err))
	}
}

// toFollower implements the term-discovery rule: it is the only place
// current_term moves forward outside of a candidate starting an election,
// and it always persists before returning.
func (r *Raft) toFollower(term uint64) {
	r.role = Follower
	r.currentTerm = term
	r.votedFor = 0
	r.persistOrFatal()
	r.metrics.observeRole(Follower)
	r.metrics.term.Set(float64(term))
}

// follower

func (r *Raft) runFollower(ctx context.Context) {
	r.logger.Info("running follower", zap.Uint64("term", r.currentTerm))
	timeoutCh := randomTimeout(randomElectionTimeout(r.config))

	for r.role == Follower {
		select {
		case <-ctx.Done():
			return

		case <-timeoutCh:
			timeoutCh = randomTimeout(randomElectionTimeout(r.config))
			if time.Since(r.lastValidRPC) >= r.config.ElectionTimeoutMin {
				r.logger.Info("election timeout elapsed, becoming candidate")
				r.role = Candidate
			}

		case env := <-r.rpcCh:
			r.handleRPCRequest(env)

		case sub := <-r.submitCh:
			r.handleClientSubmission(sub)

		case q := <-r.adminCh:
			r.handleAdminQuery(q)
		}
	}
}

// candidate

type voteResult struct {
	*pb.RequestVoteResponse
	peerId uint32
}

// startElection performs the Follower/Candidate → Candidate entry actions:
// bump the term, vote for self, persist, and reset the deadline.
// runCandidate broadcasts RequestVote afterwards.
func (r *Raft) startElection() {
	r.role = Candidate
	r.currentTerm++
	r.votedFor = r.id
	r.persistOrFatal()
	r.lastValidRPC = time.Now()
	r.metrics.observeRole(Candidate)
	r.metrics.term.Set(float64(r.currentTerm))
	r.logger.Info("starting election", zap.Uint64("term", r.currentTerm))
}

func (r *Raft) runCandidate(ctx context.Context) {
	r.startElection()

	grantedVotes := 1 // vote for self
	votesNeeded := r.config.Quorum()
	if grantedVotes >= votesNeeded {
		r.toLeader()
		return
	}

	votesFrom := map[uint32]bool{r.id: true}
	voteCh := make(chan *voteResult, len(r.peers))
	timeoutCh := randomTimeout(randomElectionTimeout(r.config))
	r.broadcastRequestVote(voteCh)

	for r.role == Candidate {
		select {
		case <-ctx.Done():
			return

		case vote := <-voteCh:
			r.handleVoteResult(vote, votesFrom, &grantedVotes, votesNeeded)

		case <-timeoutCh:
			r.logger.Info("election timeout, restarting election")
			r.metrics.electionsLost.Inc()
			return

		case env := <-r.rpcCh:
			r.handleRPCRequest(env)

		case sub := <-r.submitCh:
			r.handleClientSubmission(sub)

		case q := <-r.adminCh:
			r.handleAdminQuery(q)
		}
	}
}

func (r *Raft) broadcastRequestVote(voteCh chan *voteResult) {
	lastIndex, lastTerm := r.getLastLog()
	req := &pb.RequestVoteRequest{
		Term:        r.currentTerm,
		CandidateId: r.id,
		LastLogId:   lastIndex,
		LastLogTerm: lastTerm,
	}

	for peerID, peer := range r.peers {
		peerID, peer := peerID, peer
		go func() {
			callCtx, cancel := context.WithTimeout(r.runCtx, r.config.RPCTimeout)
			defer cancel()

			resp, err := peer.RequestVote(callCtx, req)
			if err != nil {
				r.metrics.rpcFailures.WithLabelValues("request_vote").Inc()
				r.logger.Warn("RequestVote RPC failed", zap.Uint32("peer", peerID), zap.Error(err))
				return
			}

			select {
			case voteCh <- &voteResult{RequestVoteResponse: resp, peerId: peerID}:
			case <-callCtx.Done():
			}
		}()
	}
}

func (r *Raft) handleVoteResult(vote *voteResult, votesFrom map[uint32]bool, grantedVotes *int, votesNeeded int) {
	if vote.GetTerm() < r.currentTerm {
		return // stale reply, discard
	}
	if vote.GetTerm() > r.currentTerm {
		r.metrics.electionsLost.Inc()
		r.toFollower(vote.GetTerm())
		return
	}
	if r.role != Candidate {
		return
	}
	if !vote.VoteGranted || votesFrom[vote.peerId] {
		return // not granted, or already counted this peer this term
	}

	votesFrom[vote.peerId] = true
	*grantedVotes++
	r.logger.Info("vote granted", zap.Uint32("peer", vote.peerId), zap.Int("votes", *grantedVotes))

	if *grantedVotes >= votesNeeded {
		r.toLeader()
	}
}

// leader

type appendEntriesResult struct {
	*pb.AppendEntriesResponse
	req    *pb.AppendEntriesRequest
	peerId uint32
}

func (r *Raft) toLeader() {
	r.role = Leader
	r.leaderID = r.id
	r.metrics.observeRole(Leader)
	r.metrics.electionsWon.Inc()
	r.logger.Info("elected leader", zap.Uint64("term", r.currentTerm))
}

func (r *Raft) runLeader(ctx context.Context) {
	lastIndex, _ := r.getLastLog()
	for peerID := range r.peers {
		r.nextIndex[peerID] = lastIndex + 1
		r.matchIndex[peerID] = 0
	}
	r.logger.Info("running leader", zap.Uint64("term", r.currentTerm))

	r.appendResultCh = make(chan *appendEntriesResult, len(r.peers))
	timeoutCh := randomTimeout(r.config.HeartbeatInterval)
	r.broadcastAppendEntries()

	for r.role == Leader {
		select {
		case <-ctx.Done():
			return

		case <-timeoutCh:
			timeoutCh = randomTimeout(r.config.HeartbeatInterval)
			r.broadcastAppendEntries()

		case result := <-r.appendResultCh:
			r.handleAppendEntriesResult(result)

		case env := <-r.rpcCh:
			r.handleRPCRequest(env)

		case sub := <-r.submitCh:
			r.handleClientSubmission(sub)

		case q := <-r.adminCh:
			r.handleAdminQuery(q)
		}
	}
}

func (r *Raft) broadcastAppendEntries() {
	for peerID, peer := range r.peers {
		peerID, peer := peerID, peer

		next := r.nextIndex[peerID]
		var entries []*pb.Entry
		if r.log.LastIndex() >= next {
			entries = r.log.From(next)
		}
		prevIndex := next - 1
		prevTerm := r.log.TermAt(prevIndex)

		req := &pb.AppendEntriesRequest{
			Term:           r.currentTerm,
			LeaderId:       r.id,
			PrevLogId:      prevIndex,
			PrevLogTerm:    prevTerm,
			Entries:        entries,
			LeaderCommitId: r.commitIndex,
		}
		resultCh := r.appendResultCh

		go func() {
			callCtx, cancel := context.WithTimeout(r.runCtx, r.config.RPCTimeout)
			defer cancel()

			resp, err := peer.AppendEntries(callCtx, req)
			if err != nil {
				r.metrics.rpcFailures.WithLabelValues("append_entries").Inc()
				r.logger.Warn("AppendEntries RPC failed", zap.Uint32("peer", peerID), zap.Error(err))
				return
			}

			select {
			case resultCh <- &appendEntriesResult{AppendEntriesResponse: resp, req: req, peerId: peerID}:
			case <-callCtx.Done():
			}
		}()
	}
}

func (r *Raft) handleAppendEntriesResult(result *appendEntriesResult) {
	if result.GetTerm() > r.currentTerm {
		r.toFollower(result.GetTerm())
		return
	}
	if r.role != Leader || result.req.GetTerm() != r.currentTerm {
		return // reply belongs to a term/role we've since left
	}

	peerID := result.peerId
	if result.GetSuccess() {
		newMatch := result.req.GetPrevLogId() + uint64(len(result.req.GetEntries()))
		if newMatch > r.matchIndex[peerID] {
			r.matchIndex[peerID] = newMatch
			r.nextIndex[peerID] = newMatch + 1
			r.advanceCommitIndex()
		}
		return
	}

	// only back off if this reply answers our current expectation for the
	// peer; an older in-flight reply must not move next_index backwards
	// past a more recent success.
	if result.req.GetPrevLogId() == r.nextIndex[peerID]-1 && r.nextIndex[peerID] > 1 {
		r.nextIndex[peerID]--
	}
}

// advanceCommitIndex implements the same-term commit guard: a leader
// commits an entry from a previous term only implicitly, by committing a
// later entry from its own term.
func (r *Raft) advanceCommitIndex() {
	quorum := r.config.Quorum()
	for n := r.log.LastIndex(); n > r.commitIndex; n-- {
		if r.log.TermAt(n) != r.currentTerm {
			continue
		}
		count := 1 // self
		for peerID := range r.peers {
			if r.matchIndex[peerID] >= n {
				count++
			}
		}
		if count >= quorum {
			r.commitIndex = n
			r.metrics.commitIndex.Set(float64(n))
			r.applyCommitted()
			break
		}
	}
}

// RPC handlers

// handleRequestVote decides whether to grant a vote in this term.
func (r *Raft) handleRequestVote(req *pb.RequestVoteRequest) *pb.RequestVoteResponse {
	if req.GetTerm() < r.currentTerm {
		return &pb.RequestVoteResponse{Term: r.currentTerm, VoteGranted: false}
	}
	if req.GetTerm() > r.currentTerm {
		if r.role == Candidate {
			r.metrics.electionsLost.Inc()
		}
		r.toFollower(req.GetTerm())
	}

	grant := r.votedFor == 0 || r.votedFor == req.GetCandidateId()
	if grant {
		lastIndex, lastTerm := r.getLastLog()
		grant = req.GetLastLogTerm() > lastTerm ||
			(req.GetLastLogTerm() == lastTerm && req.GetLastLogId() >= lastIndex)
	}

	if grant {
		r.votedFor = req.GetCandidateId()
		r.persistOrFatal()
		r.lastValidRPC = time.Now()
		r.logger.Info("vote granted", zap.Uint32("candidate", req.GetCandidateId()), zap.Uint64("term", r.currentTerm))
	}

	return &pb.RequestVoteResponse{Term: r.currentTerm, VoteGranted: grant}
}

// handleAppendEntries validates and applies a leader's replication request,
// in the order a follower must check these conditions.
func (r *Raft) handleAppendEntries(req *pb.AppendEntriesRequest) *pb.AppendEntriesResponse {
	if req.GetTerm() < r.currentTerm {
		return &pb.AppendEntriesResponse{Term: r.currentTerm, Success: false}
	}
	if req.GetTerm() > r.currentTerm {
		if r.role == Candidate {
			r.metrics.electionsLost.Inc()
		}
		r.toFollower(req.GetTerm())
	} else if r.role != Follower {
		if r.role == Candidate {
			r.metrics.electionsLost.Inc()
		}
		r.role = Follower
		r.metrics.observeRole(Follower)
	}
	r.lastValidRPC = time.Now()
	r.leaderID = req.GetLeaderId()

	if !r.log.Match(req.GetPrevLogId(), req.GetPrevLogTerm()) {
		return &pb.AppendEntriesResponse{Term: r.currentTerm, Success: false}
	}

	entries := req.GetEntries()
	for i, entry := range entries {
		index := req.GetPrevLogId() + 1 + uint64(i)
		existing := r.log.At(index)
		if existing == nil {
			r.log.Append(entries[i:])
			break
		}
		if existing.GetTerm() != entry.GetTerm() {
			r.log.TruncateSuffixFrom(index)
			// entries this node appended as leader from index on are gone, so
			// their submitters are redirected instead of waiting on whatever
			// entry later lands at the same index.
			for pendingIndex, ch := range r.pending {
				if pendingIndex >= index {
					delete(r.pending, pendingIndex)
					ch <- submissionResult{redirect: true, leaderID: r.leaderID}
				}
			}
			r.log.Append(entries[i:])
			break
		}
		// identical entry already present, keep scanning
	}

	if req.GetLeaderCommitId() > r.commitIndex {
		if req.GetLeaderCommitId() < r.log.LastIndex() {
			r.commitIndex = req.GetLeaderCommitId()
		} else {
			r.commitIndex = r.log.LastIndex()
		}
		r.metrics.commitIndex.Set(float64(r.commitIndex))
	}

	r.persistOrFatal()
	r.applyCommitted()

	return &pb.AppendEntriesResponse{Term: r.currentTerm, Success: true}
}
