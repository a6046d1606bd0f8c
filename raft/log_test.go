package raft

import (
	"testing"

	"github.com/lucfreitas/raftcore/pb"
	"github.com/stretchr/testify/require"
)

func TestLog_AppendAndAt(t *testing.T) {
	l := newLog()
	require.Nil(t, l.At(1))

	last := l.Append([]*pb.Entry{{Id: 1, Term: 1, Data: []byte("a")}, {Id: 2, Term: 1, Data: []byte("b")}})
	require.Equal(t, uint64(2), last)
	require.Equal(t, uint64(2), l.LastIndex())
	require.Equal(t, []byte("a"), l.At(1).GetData())
	require.Equal(t, []byte("b"), l.At(2).GetData())
}

func TestLog_MatchAtSentinel(t *testing.T) {
	l := newLog()
	require.True(t, l.Match(0, 0))
	require.False(t, l.Match(1, 0))
}

func TestLog_MatchAgainstExistingEntry(t *testing.T) {
	l := newLog()
	l.Append([]*pb.Entry{{Id: 1, Term: 3, Data: nil}})
	require.True(t, l.Match(1, 3))
	require.False(t, l.Match(1, 4))
}

func TestLog_TruncateSuffixFrom(t *testing.T) {
	l := newLog()
	l.Append([]*pb.Entry{{Id: 1, Term: 1}, {Id: 2, Term: 1}, {Id: 3, Term: 2}})

	l.TruncateSuffixFrom(2)
	require.Equal(t, uint64(1), l.LastIndex())
	require.Nil(t, l.At(2))
}

func TestLog_TruncateSuffixFromZeroClearsEverything(t *testing.T) {
	l := newLog()
	l.Append([]*pb.Entry{{Id: 1, Term: 1}})
	l.TruncateSuffixFrom(0)
	require.Equal(t, uint64(0), l.LastIndex())
}

func TestLog_FromReturnsSuffix(t *testing.T) {
	l := newLog()
	l.Append([]*pb.Entry{{Id: 1, Term: 1}, {Id: 2, Term: 1}, {Id: 3, Term: 1}})
	got := l.From(2)
	require.Len(t, got, 2)
	require.Equal(t, uint64(2), got[0].GetId())
}
