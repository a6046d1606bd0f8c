package raft

import "time"

// Config holds the options a cluster member needs at startup. SelfID must
// be a member of Peers.
type Config struct {
	SelfID uint32            `mapstructure:"self_id" yaml:"self_id"`
	Peers  map[uint32]string `mapstructure:"peers" yaml:"peers"` // id -> address, includes SelfID

	ElectionTimeoutMin time.Duration `mapstructure:"election_timeout_min" yaml:"election_timeout_min"`
	ElectionTimeoutMax time.Duration `mapstructure:"election_timeout_max" yaml:"election_timeout_max"`
	HeartbeatInterval  time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`
	RPCTimeout         time.Duration `mapstructure:"rpc_timeout" yaml:"rpc_timeout"`

	StoragePath string `mapstructure:"storage_path" yaml:"storage_path"`
}

// DefaultConfig returns reasonable timeout defaults for a local cluster.
func DefaultConfig() *Config {
	return &Config{
		ElectionTimeoutMin: 150 * time.Millisecond,
		ElectionTimeoutMax: 300 * time.Millisecond,
		HeartbeatInterval:  50 * time.Millisecond,
		RPCTimeout:         100 * time.Millisecond,
	}
}

// Quorum returns the number of grants/replicas needed for a majority of the
// full cluster (including self).
func (c *Config) Quorum() int {
	return len(c.Peers)/2 + 1
}
