package raft

import (
	"math/rand"
	"time"
)

// randomElectionTimeout picks a deadline uniformly in [min, max), or min
// when max <= min.
func randomElectionTimeout(cfg *Config) time.Duration {
	min := cfg.ElectionTimeoutMin
	max := cfg.ElectionTimeoutMax
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func randomTimeout(d time.Duration) <-chan time.Time {
	return time.After(d)
}
