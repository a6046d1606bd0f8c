package raft

import "github.com/lucfreitas/raftcore/pb"

// adminQuery asks the consensus task for a read-only snapshot. It rides the
// same message queue as everything else so it can never race the task's
// own mutation of raftState; the protocol itself never consults it.
type adminQuery struct {
	respCh chan *pb.AdminResponse
}

func (r *Raft) handleAdminQuery(q *adminQuery) {
	lastIndex, _ := r.getLastLog()
	q.respCh <- &pb.AdminResponse{
		CurrentTerm: r.currentTerm,
		Role:        r.role.String(),
		CommitIndex: r.commitIndex,
		LastApplied: r.lastApplied,
		LastLogId:   lastIndex,
		VotedFor:    r.votedFor,
		LeaderId:    r.leaderID,
	}
}

// Admin returns a point-in-time snapshot of this node's term, role, and log
// progress for external observability.
func (r *Raft) Admin() *pb.AdminResponse {
	q := &adminQuery{respCh: make(chan *pb.AdminResponse, 1)}
	select {
	case r.adminCh <- q:
	case <-r.shutdownCh:
		return &pb.AdminResponse{}
	}
	return <-q.respCh
}
