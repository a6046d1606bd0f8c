// Command raftd runs a single raftcore cluster member: it loads a YAML
// config, dials its peers, opens its on-disk log, and serves the Raft gRPC
// service plus a Prometheus /metrics endpoint until signalled to stop. It
// also offers an admin subcommand for querying a running node's status.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucfreitas/raftcore/pb"
	"github.com/lucfreitas/raftcore/raft"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var (
	cfgFile      string
	metricsAddr  string
	adminAddr    string
	adminTimeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raftd",
		Short: "raftd runs and inspects a raftcore cluster member",
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAdminCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run this node as a member of a raftcore cluster",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&cfgFile, "config", "raftd.yaml", "path to the cluster config file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address the Prometheus endpoint listens on")
	return cmd
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "query a running node's term, role, and log progress",
		RunE:  runAdmin,
	}
	cmd.Flags().StringVar(&adminAddr, "addr", "127.0.0.1:7000", "address of the node to query")
	cmd.Flags().DurationVar(&adminTimeout, "timeout", 2*time.Second, "RPC timeout")
	return cmd
}

func loadConfig(path string) (*raft.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("election_timeout_min", "150ms")
	v.SetDefault("election_timeout_max", "300ms")
	v.SetDefault("heartbeat_interval", "50ms")
	v.SetDefault("rpc_timeout", "100ms")
	v.SetDefault("storage_path", "raftd.db")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := raft.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	selfAddr, ok := cfg.Peers[cfg.SelfID]
	if !ok {
		return fmt.Errorf("self_id %d is not present in peers", cfg.SelfID)
	}

	peers := make(map[uint32]raft.Peer, len(cfg.Peers)-1)
	for id, addr := range cfg.Peers {
		if id == cfg.SelfID {
			continue
		}
		peer, err := raft.NewGRPCPeer(addr)
		if err != nil {
			return fmt.Errorf("dial peer %d at %s: %w", id, addr, err)
		}
		peers[id] = peer
	}

	persister := raft.NewFilePersister(cfg.StoragePath)
	sm := newEchoStateMachine()
	reg := prometheus.NewRegistry()

	node := raft.NewRaft(cfg.SelfID, peers, persister, sm, cfg, logger, reg)

	ctx, cancel := context.WithCancel(context.Background())
	go node.Run(ctx)

	lis, err := net.Listen("tcp", selfAddr)
	if err != nil {
		cancel()
		return fmt.Errorf("listen on %s: %w", selfAddr, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterRaftServer(grpcServer, raft.NewServer(node))

	go func() {
		logger.Info("serving raft rpc", zap.String("addr", selfAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		logger.Info("serving metrics", zap.String("addr", metricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()
	<-node.Done()
	grpcServer.GracefulStop()
	_ = metricsServer.Close()
	return nil
}

// runAdmin dials a single node directly and prints the snapshot its Admin
// RPC returns, without standing up a consensus task of its own.
func runAdmin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, adminAddr, grpc.WithInsecure(), grpc.WithBlock())
	if err != nil {
		return fmt.Errorf("dial %s: %w", adminAddr, err)
	}
	defer conn.Close()

	client := pb.NewRaftClient(conn)
	resp, err := client.Admin(ctx, &pb.AdminRequest{})
	if err != nil {
		return fmt.Errorf("admin rpc: %w", err)
	}

	fmt.Printf("term=%d role=%s commit_index=%d last_applied=%d last_log_id=%d voted_for=%d leader_id=%d\n",
		resp.GetCurrentTerm(), resp.GetRole(), resp.GetCommitIndex(), resp.GetLastApplied(),
		resp.GetLastLogId(), resp.GetVotedFor(), resp.GetLeaderId())
	return nil
}

// echoStateMachine is the default StateMachine used when raftd is run
// without an embedding application: it returns the command unchanged,
// which is enough to exercise and observe commit/apply behavior end to end.
type echoStateMachine struct{}

func newEchoStateMachine() *echoStateMachine {
	return &echoStateMachine{}
}

func (m *echoStateMachine) Apply(command []byte) ([]byte, error) {
	return command, nil
}
