package raft

import (
	"context"

	"github.com/lucfreitas/raftcore/pb"
)

// Server adapts a *Raft to the pb.RaftServer gRPC interface. It never
// touches raftState directly; every call is translated into a message on
// the consensus task's queue and blocks for the corresponding reply,
// exactly like a client calling Submit or Admin.
type Server struct {
	pb.UnimplementedRaftServer

	r *Raft
}

// NewServer wraps r for registration with a grpc.Server.
func NewServer(r *Raft) *Server {
	return &Server{r: r}
}

var _ pb.RaftServer = (*Server)(nil)

func (s *Server) RequestVote(ctx context.Context, req *pb.RequestVoteRequest) (*pb.RequestVoteResponse, error) {
	env := &rpcEnvelope{kind: rpcRequestVote, voteReq: req, respCh: make(chan rpcResponse, 1)}
	resp, err := s.r.dispatchRPC(ctx, env)
	if err != nil {
		return nil, err
	}
	return resp.voteResp, nil
}

func (s *Server) AppendEntries(ctx context.Context, req *pb.AppendEntriesRequest) (*pb.AppendEntriesResponse, error) {
	env := &rpcEnvelope{kind: rpcAppendEntries, appendReq: req, respCh: make(chan rpcResponse, 1)}
	resp, err := s.r.dispatchRPC(ctx, env)
	if err != nil {
		return nil, err
	}
	return resp.appendResp, nil
}

// ApplyCommand is the client-facing RPC wrapping Submit: a command is
// accepted only by the leader, and the response carries the applied result
// or a redirect to the last known leader.
func (s *Server) ApplyCommand(ctx context.Context, req *pb.ApplyCommandRequest) (*pb.ApplyCommandResponse, error) {
	result, err := s.r.Submit(ctx, req.GetData())
	if err != nil {
		if nle, ok := err.(*NotLeaderError); ok {
			return &pb.ApplyCommandResponse{Redirect: true, LeaderId: nle.LeaderID}, nil
		}
		return &pb.ApplyCommandResponse{Error: err.Error()}, nil
	}
	return &pb.ApplyCommandResponse{Committed: true, Result: result}, nil
}

func (s *Server) Admin(ctx context.Context, req *pb.AdminRequest) (*pb.AdminResponse, error) {
	return s.r.Admin(), nil
}

// dispatchRPC submits env to the consensus task's queue and waits for its
// reply or ctx cancellation, whichever comes first.
func (r *Raft) dispatchRPC(ctx context.Context, env *rpcEnvelope) (rpcResponse, error) {
	select {
	case r.rpcCh <- env:
	case <-ctx.Done():
		return rpcResponse{}, ctx.Err()
	case <-r.shutdownCh:
		return rpcResponse{}, ErrShuttingDown
	}

	select {
	case resp := <-env.respCh:
		return resp, nil
	case <-ctx.Done():
		return rpcResponse{}, ctx.Err()
	}
}
