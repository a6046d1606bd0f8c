package raft

import (
	"context"

	"github.com/lucfreitas/raftcore/pb"
	"google.golang.org/grpc"
)

// Peer is the outbound RPC client for a single other cluster member, with
// per-call timeouts. The consensus task never touches sockets directly; it
// only ever calls through this interface.
type Peer interface {
	RequestVote(ctx context.Context, req *pb.RequestVoteRequest) (*pb.RequestVoteResponse, error)
	AppendEntries(ctx context.Context, req *pb.AppendEntriesRequest) (*pb.AppendEntriesResponse, error)
}

// grpcPeer is the concrete realization of Peer over a single gRPC
// connection to another cluster member.
type grpcPeer struct {
	client pb.RaftClient
}

// NewGRPCPeer dials addr and wraps the resulting connection as a Peer.
// Dialing is lazy/non-blocking; failures surface as RPC errors on first
// use, which the leader's replication loop and the candidate's election
// loop already treat as ordinary transport failures.
func NewGRPCPeer(addr string) (Peer, error) {
	conn, err := grpc.Dial(addr, grpc.WithInsecure())
	if err != nil {
		return nil, err
	}
	return &grpcPeer{client: pb.NewRaftClient(conn)}, nil
}

func (p *grpcPeer) RequestVote(ctx context.Context, req *pb.RequestVoteRequest) (*pb.RequestVoteResponse, error) {
	return p.client.RequestVote(ctx, req)
}

func (p *grpcPeer) AppendEntries(ctx context.Context, req *pb.AppendEntriesRequest) (*pb.AppendEntriesResponse, error) {
	return p.client.AppendEntries(ctx, req)
}
