package raft

import "github.com/lucfreitas/raftcore/pb"

// Role is a node's position in the Raft role machine.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "Follower"
	case Candidate:
		return "Candidate"
	case Leader:
		return "Leader"
	default:
		return "Unknown"
	}
}

// raftState holds everything PersistentState and VolatileState name in the
// data model: current_term/voted_for/log are persistent, the rest is
// volatile and never persisted; nextIndex/matchIndex are reset each time
// the node becomes leader.
type raftState struct {
	// persistent
	currentTerm uint64
	votedFor    uint32 // 0 means no vote cast this term; peer ids are >= 1
	log         *Log

	// volatile, all roles
	role        Role
	commitIndex uint64
	lastApplied uint64
	leaderID    uint32 // best-known current leader, 0 if unknown

	// volatile, leader only
	nextIndex  map[uint32]uint64
	matchIndex map[uint32]uint64
}

func newRaftState() *raftState {
	return &raftState{
		role:       Follower,
		log:        newLog(),
		nextIndex:  make(map[uint32]uint64),
		matchIndex: make(map[uint32]uint64),
	}
}

func (s *raftState) getLastLog() (uint64, uint64) {
	return s.log.LastIndex(), s.log.LastTerm()
}

// voteFor records a vote for candidateID in the current term.
func (s *raftState) voteFor(candidateID uint32) {
	s.votedFor = candidateID
}

// snapshotPersistentState builds the wire/disk representation of the
// persistent fields, for handing to the Persister.
func (s *raftState) snapshotPersistentState() PersistentState {
	entries := make([]*pb.Entry, s.log.Len())
	copy(entries, s.log.entries)
	return PersistentState{
		CurrentTerm: s.currentTerm,
		VotedFor:    s.votedFor,
		Entries:     entries,
	}
}

// PersistentState is the durable subset of a node's state: current_term,
// voted_for, and the full log. It is what crosses the Persister boundary.
type PersistentState struct {
	CurrentTerm uint64
	VotedFor    uint32
	Entries     []*pb.Entry
}
