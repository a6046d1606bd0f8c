package raft

// StateMachine is the user-supplied application collaborator. Apply is
// invoked synchronously, strictly in log order, once per committed entry;
// its return value is routed back to the client that submitted the
// command, if any.
type StateMachine interface {
	Apply(command []byte) (result []byte, err error)
}

// applyCommitted advances lastApplied up to commitIndex, applying each
// entry's command to the state machine in order and completing any
// pending client submission waiting on that index.
func (r *Raft) applyCommitted() {
	for r.lastApplied < r.commitIndex {
		r.lastApplied++
		entry := r.log.At(r.lastApplied)
		result, err := r.sm.Apply(entry.GetData())
		r.completeSubmission(r.lastApplied, submissionResult{
			committed: true,
			result:    result,
			err:       err,
		})
	}
	r.metrics.lastApplied.Set(float64(r.lastApplied))
}
