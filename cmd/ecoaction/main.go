package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ecoaction/ecoaction/pkg/auth"
	"github.com/ecoaction/ecoaction/pkg/cache"
	"github.com/ecoaction/ecoaction/pkg/config"
	"github.com/ecoaction/ecoaction/pkg/coordinator"
	"github.com/ecoaction/ecoaction/pkg/events"
	"github.com/ecoaction/ecoaction/pkg/gateway"
	"github.com/ecoaction/ecoaction/pkg/log"
	"github.com/ecoaction/ecoaction/pkg/session"
	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	configPath   string
	logLevelFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ecoaction",
	Short: "EcoAction - volunteer missions client",
	Long: `EcoAction connects volunteers with environmental missions:
beach cleanups, tree planting, waste collection, and education.

All reads go through a local query cache with freshness tracking;
enroll and cancel apply optimistically and roll back on failure.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"EcoAction version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override configured log level (debug|info|warn|error)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(missionsCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(myMissionsCmd)
	rootCmd.AddCommand(mockServerCmd)
}

// app bundles the wired client stack for one command invocation.
type app struct {
	cfg      config.Config
	sessions *session.Store
	gw       *gateway.Client
	cache    *cache.Cache
	broker   *events.Broker
	coord    *coordinator.Coordinator
	auth     *auth.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	log.Init(log.Config{Level: log.Level(level)})

	sessions, err := session.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker()
	broker.Start()

	gw := gateway.New(cfg.BaseURL, gateway.WithTimeout(cfg.RequestTimeout))
	qc := cache.New(cache.WithBroker(broker))

	return &app{
		cfg:      cfg,
		sessions: sessions,
		gw:       gw,
		cache:    qc,
		broker:   broker,
		coord:    coordinator.New(gw, qc, coordinator.WithBroker(broker)),
		auth:     auth.New(gw, sessions),
	}, nil
}

func (a *app) Close() {
	a.cache.Close()
	a.broker.Stop()
	_ = a.sessions.Close()
}

// requireUser returns the logged-in user id or an actionable error.
func (a *app) requireUser() (string, error) {
	uid := a.sessions.CurrentUserID()
	if uid == "" {
		return "", fmt.Errorf("not logged in, run \"ecoaction login\" first")
	}
	return uid, nil
}

// awaitSnapshot polls the cache until the key settles: a cached payload,
// or the post-retry error. The cache itself is asynchronous; the CLI is
// the one consumer that wants a synchronous answer.
func awaitSnapshot(ctx context.Context, qc *cache.Cache, q cache.Query) (cache.Snapshot, error) {
	for {
		snap := qc.Read(ctx, q)
		switch snap.Status {
		case cache.StatusIdle:
			return snap, nil
		case cache.StatusError:
			return snap, snap.Err
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}
}

func (a *app) missionsQuery() cache.Query {
	return cache.Query{
		Key:        cache.MissionsKey,
		StaleAfter: a.cfg.Missions.StaleAfter,
		RetainFor:  a.cfg.Missions.RetainFor,
		Retries:    a.cfg.Retries,
		Fetch: func(ctx context.Context) (any, error) {
			return a.gw.ListMissions(ctx, types.CategoryAll, "")
		},
	}
}

func (a *app) participationsQuery(userID string) cache.Query {
	return cache.Query{
		Key:        cache.ParticipationsKey(userID),
		StaleAfter: a.cfg.Participations.StaleAfter,
		RetainFor:  a.cfg.Participations.RetainFor,
		Retries:    a.cfg.Retries,
		Fetch: func(ctx context.Context) (any, error) {
			return a.gw.ListUserParticipations(ctx, userID)
		},
	}
}

// missions loads the full mission list through the cache.
func (a *app) missions(ctx context.Context) ([]types.Mission, error) {
	snap, err := awaitSnapshot(ctx, a.cache, a.missionsQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to load missions: %w", err)
	}
	missions, _ := snap.Payload.([]types.Mission)
	return missions, nil
}

// participations loads the user's confirmed participations through the cache.
func (a *app) participations(ctx context.Context, userID string) ([]types.Participation, error) {
	snap, err := awaitSnapshot(ctx, a.cache, a.participationsQuery(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load participations: %w", err)
	}
	parts, _ := snap.Payload.([]types.Participation)
	return parts, nil
}
