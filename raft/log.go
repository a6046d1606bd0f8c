package raft

import "github.com/lucfreitas/raftcore/pb"

// Log is the append-only, 1-indexed sequence of replicated entries. Index 0
// is never a real entry; it is the sentinel "nothing has been written yet"
// position used by PrevLogId/PrevLogTerm when a leader replicates from the
// very start of its log.
type Log struct {
	entries []*pb.Entry
}

func newLog() *Log {
	return &Log{entries: make([]*pb.Entry, 0)}
}

// Append adds entries in order and returns the new last index.
func (l *Log) Append(entries []*pb.Entry) uint64 {
	l.entries = append(l.entries, entries...)
	return l.LastIndex()
}

// At returns the entry at the given 1-based index, or nil if index is 0 or
// beyond the last index.
func (l *Log) At(index uint64) *pb.Entry {
	if index == 0 || index > uint64(len(l.entries)) {
		return nil
	}
	return l.entries[index-1]
}

// From returns every entry from index (inclusive) to the end of the log.
func (l *Log) From(index uint64) []*pb.Entry {
	if index == 0 || index > uint64(len(l.entries)) {
		return nil
	}
	return l.entries[index-1:]
}

func (l *Log) LastIndex() uint64 {
	return uint64(len(l.entries))
}

func (l *Log) LastTerm() uint64 {
	return l.TermAt(l.LastIndex())
}

// TermAt returns the term of the entry at index, or 0 if index is 0.
// Callers must not pass an index beyond LastIndex().
func (l *Log) TermAt(index uint64) uint64 {
	if index == 0 {
		return 0
	}
	entry := l.At(index)
	if entry == nil {
		return 0
	}
	return entry.GetTerm()
}

// TruncateSuffixFrom removes every entry with index >= index, leaving
// LastIndex() == index-1.
func (l *Log) TruncateSuffixFrom(index uint64) {
	if index == 0 {
		l.entries = l.entries[:0]
		return
	}
	if index > uint64(len(l.entries)) {
		return
	}
	l.entries = l.entries[:index-1]
}

// Match implements the Raft log-matching consistency check: true iff
// prevIndex is 0 (nothing to check yet) or the entry at prevIndex exists
// and was written in prevTerm.
func (l *Log) Match(prevIndex, prevTerm uint64) bool {
	if prevIndex == 0 {
		return true
	}
	if prevIndex > l.LastIndex() {
		return false
	}
	return l.TermAt(prevIndex) == prevTerm
}

func (l *Log) Len() int {
	return len(l.entries)
}
