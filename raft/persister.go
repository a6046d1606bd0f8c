package raft

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lucfreitas/raftcore/pb"
)

// Persister durably stores PersistentState so that a restarted node can
// recover current_term, voted_for, and the log. An RPC handler must not
// reply until the state that justifies the reply has been persisted.
type Persister interface {
	SaveState(state PersistentState) error
	LoadState() (PersistentState, error)
}

// FilePersister implements Persister on top of a conceptual two-section
// file layout: a small header (current_term, voted_for) rewritten
// atomically, and an append-only sequence of length-prefixed (id, term,
// command) records. Both sections are rewritten on every SaveState, each
// with its own write-temp-then-rename, which keeps each file's write atomic
// from the perspective of a reader without requiring an embedded KV engine
// for what is, structurally, a single ordered log. The two renames are not
// atomic with respect to each other.
type FilePersister struct {
	headerPath string
	logPath    string
}

func NewFilePersister(storagePath string) *FilePersister {
	return &FilePersister{
		headerPath: storagePath + ".header",
		logPath:    storagePath + ".log",
	}
}

func (p *FilePersister) SaveState(state PersistentState) error {
	if err := writeFileAtomic(p.headerPath, encodeHeader(state.CurrentTerm, state.VotedFor)); err != nil {
		return fmt.Errorf("persist header: %w", err)
	}
	if err := writeFileAtomic(p.logPath, encodeLog(state.Entries)); err != nil {
		return fmt.Errorf("persist log: %w", err)
	}
	return nil
}

func (p *FilePersister) LoadState() (PersistentState, error) {
	term, votedFor, err := p.loadHeader()
	if err != nil {
		return PersistentState{}, err
	}
	entries, err := p.loadLog()
	if err != nil {
		return PersistentState{}, err
	}
	return PersistentState{CurrentTerm: term, VotedFor: votedFor, Entries: entries}, nil
}

func (p *FilePersister) loadHeader() (uint64, uint32, error) {
	data, err := os.ReadFile(p.headerPath)
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	if len(data) < 12 {
		// corrupt or partially written header; treat as a fresh node rather
		// than risk loading a torn value that could violate current_term
		// monotonicity.
		return 0, 0, nil
	}
	term := binary.BigEndian.Uint64(data[0:8])
	votedFor := binary.BigEndian.Uint32(data[8:12])
	return term, votedFor, nil
}

func (p *FilePersister) loadLog() ([]*pb.Entry, error) {
	f, err := os.Open(p.logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []*pb.Entry
	for {
		entry, ok := readLogRecord(f)
		if !ok {
			// first unreadable (short or truncated) record and everything
			// after it is discarded; a crash mid-write must not surface a
			// half-written entry.
			break
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func encodeHeader(term uint64, votedFor uint32) []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint64(buf[0:8], term)
	binary.BigEndian.PutUint32(buf[8:12], votedFor)
	return buf
}

// encodeLog lays out entries as consecutive records:
// [8 bytes id][8 bytes term][4 bytes len(data)][data].
func encodeLog(entries []*pb.Entry) []byte {
	var buf []byte
	for _, e := range entries {
		rec := make([]byte, 20+len(e.GetData()))
		binary.BigEndian.PutUint64(rec[0:8], e.GetId())
		binary.BigEndian.PutUint64(rec[8:16], e.GetTerm())
		binary.BigEndian.PutUint32(rec[16:20], uint32(len(e.GetData())))
		copy(rec[20:], e.GetData())
		buf = append(buf, rec...)
	}
	return buf
}

func readLogRecord(r io.Reader) (*pb.Entry, bool) {
	head := make([]byte, 20)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, false
	}
	id := binary.BigEndian.Uint64(head[0:8])
	term := binary.BigEndian.Uint64(head[8:16])
	length := binary.BigEndian.Uint32(head[16:20])
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, false
	}
	return &pb.Entry{Id: id, Term: term, Data: data}, true
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// memoryPersister is a Persister that keeps state in memory only, used by
// tests and by embedders that accept a non-durable node.
type memoryPersister struct {
	state PersistentState
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{}
}

func (p *memoryPersister) SaveState(state PersistentState) error {
	entries := make([]*pb.Entry, len(state.Entries))
	copy(entries, state.Entries)
	p.state = PersistentState{CurrentTerm: state.CurrentTerm, VotedFor: state.VotedFor, Entries: entries}
	return nil
}

func (p *memoryPersister) LoadState() (PersistentState, error) {
	return p.state, nil
}
