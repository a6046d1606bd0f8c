package raft

import (
	"context"
	"errors"

	"github.com/lucfreitas/raftcore/pb"
)

// ErrShuttingDown is returned to every pending client submission when the
// consensus task drains its queue on shutdown.
var ErrShuttingDown = errors.New("raft: shutting down")

// clientSubmission is a command waiting to be appended to the leader's log.
// It enters the consensus task's message queue exactly like an inbound RPC.
type clientSubmission struct {
	command  []byte
	resultCh chan submissionResult
}

// submissionResult is delivered exactly once, after the command is
// committed and applied — or immediately, as a redirect, if this node is
// not the leader; as a redirect, if the uncommitted entry is overwritten by
// a newer leader; or with ErrShuttingDown when the task stops.
type submissionResult struct {
	committed bool
	result    []byte
	err       error

	redirect bool
	leaderID uint32 // 0 means "no leader known"
}

// Submit is the client command surface. It blocks until the command is
// committed and applied, the node redirects, the node shuts down, or ctx is
// cancelled.
func (r *Raft) Submit(ctx context.Context, command []byte) (result []byte, err error) {
	sub := &clientSubmission{command: command, resultCh: make(chan submissionResult, 1)}

	select {
	case r.submitCh <- sub:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.shutdownCh:
		return nil, ErrShuttingDown
	}

	select {
	case res := <-sub.resultCh:
		if res.redirect {
			return nil, &NotLeaderError{LeaderID: res.leaderID}
		}
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NotLeaderError is returned when a command was submitted to a non-leader
// node. LeaderID is 0 when no leader is currently known.
type NotLeaderError struct {
	LeaderID uint32
}

func (e *NotLeaderError) Error() string {
	if e.LeaderID == 0 {
		return "raft: no leader"
	}
	return "raft: not leader"
}

// handleClientSubmission runs inside the consensus task. Non-leaders never
// queue the command.
func (r *Raft) handleClientSubmission(sub *clientSubmission) {
	if r.role != Leader {
		sub.resultCh <- submissionResult{redirect: true, leaderID: r.leaderID}
		return
	}

	lastIndex, _ := r.getLastLog()
	entry := &pb.Entry{Id: lastIndex + 1, Term: r.currentTerm, Data: sub.command}
	r.log.Append([]*pb.Entry{entry})
	r.pending[entry.GetId()] = sub.resultCh
	r.persistOrFatal()
	r.broadcastAppendEntries()
	// with no peers there is no reply to trigger a commit, so a single-node
	// leader commits here on its own vote.
	r.advanceCommitIndex()
}

// completeSubmission delivers a result to whatever client is waiting on
// index, if any, and forgets the pending record either way.
func (r *Raft) completeSubmission(index uint64, res submissionResult) {
	ch, ok := r.pending[index]
	if !ok {
		return
	}
	delete(r.pending, index)
	ch <- res
}

// drainPending fails every outstanding client submission on shutdown.
func (r *Raft) drainPending() {
	for index, ch := range r.pending {
		delete(r.pending, index)
		ch <- submissionResult{err: ErrShuttingDown}
	}
}
