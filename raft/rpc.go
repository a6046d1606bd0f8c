package raft

import "github.com/lucfreitas/raftcore/pb"

// rpcKind tags which variant an inbound rpcEnvelope carries. Dispatch on
// this tag is a finite switch, not a string-keyed route table: gRPC framing
// is converted into one of these typed variants before it ever reaches the
// consensus task.
type rpcKind int

const (
	rpcRequestVote rpcKind = iota
	rpcAppendEntries
)

// rpcEnvelope is a parsed inbound RPC request waiting on the consensus
// task's single message queue. respCh carries exactly one rpcResponse back
// to whichever goroutine (a gRPC handler) is blocked on it.
type rpcEnvelope struct {
	kind      rpcKind
	voteReq   *pb.RequestVoteRequest
	appendReq *pb.AppendEntriesRequest
	respCh    chan rpcResponse
}

type rpcResponse struct {
	voteResp   *pb.RequestVoteResponse
	appendResp *pb.AppendEntriesResponse
}

func (r *Raft) handleRPCRequest(env *rpcEnvelope) {
	switch env.kind {
	case rpcRequestVote:
		env.respCh <- rpcResponse{voteResp: r.handleRequestVote(env.voteReq)}
	case rpcAppendEntries:
		env.respCh <- rpcResponse{appendResp: r.handleAppendEntries(env.appendReq)}
	}
}
