package raft

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucfreitas/raftcore/pb"
	"github.com/stretchr/testify/require"
)

func TestFilePersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(filepath.Join(dir, "node1"))

	state := PersistentState{
		CurrentTerm: 7,
		VotedFor:    2,
		Entries: []*pb.Entry{
			{Id: 1, Term: 1, Data: []byte("a")},
			{Id: 2, Term: 3, Data: []byte("bb")},
		},
	}
	require.NoError(t, p.SaveState(state))

	loaded, err := p.LoadState()
	require.NoError(t, err)
	require.Equal(t, state.CurrentTerm, loaded.CurrentTerm)
	require.Equal(t, state.VotedFor, loaded.VotedFor)
	require.Len(t, loaded.Entries, 2)
	require.Equal(t, []byte("bb"), loaded.Entries[1].GetData())
}

func TestFilePersister_LoadStateOnFreshPathReturnsZeroValue(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(filepath.Join(dir, "missing"))

	state, err := p.LoadState()
	require.NoError(t, err)
	require.Equal(t, uint64(0), state.CurrentTerm)
	require.Empty(t, state.Entries)
}

func TestFilePersister_TruncatedLogTailIsDiscarded(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "node1")
	p := NewFilePersister(base)

	state := PersistentState{
		CurrentTerm: 1,
		Entries: []*pb.Entry{
			{Id: 1, Term: 1, Data: []byte("whole")},
			{Id: 2, Term: 1, Data: []byte("also-whole")},
		},
	}
	require.NoError(t, p.SaveState(state))

	full, err := os.ReadFile(base + ".log")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(base+".log", full[:len(full)-3], 0o644))

	loaded, err := p.LoadState()
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 1)
	require.Equal(t, []byte("whole"), loaded.Entries[0].GetData())
}

func TestMemoryPersister_RoundTrip(t *testing.T) {
	p := newMemoryPersister()
	state := PersistentState{CurrentTerm: 4, VotedFor: 9}
	require.NoError(t, p.SaveState(state))

	loaded, err := p.LoadState()
	require.NoError(t, err)
	require.Equal(t, state.CurrentTerm, loaded.CurrentTerm)
	require.Equal(t, state.VotedFor, loaded.VotedFor)
	require.Empty(t, loaded.Entries)
}
