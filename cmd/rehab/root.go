// ABOUTME: Root Cobra command for rehab CLI.
// ABOUTME: Loads config, sets up logging and opens storage and the engine via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"io"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/catalog"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/config"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/engine"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/logging"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// noStorage marks commands that manage storage themselves or need none.
const noStorage = "no-storage"

var (
	cfg       *config.Config
	repo      storage.Repository
	eng       *engine.Engine
	logger    *logrus.Logger
	logCloser io.Closer

	userFlag     string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "rehab",
	Short: "RSI rehab exercise progression tracker",
	Long: `Rehab tracks a repetitive-strain-injury rehab program and adjusts each
exercise's weight and rep range from how your sessions went.

HOW IT WORKS:

  Each exercise has a prescription: a weight and a target rep range.
  Log every AM and PM session with reps and peak pain (0-10). After 6
  completed sessions the last 6 are evaluated and the prescription scales
  up or down. Pain of 7 or more scales down immediately.

  A weekly load-management survey computes an irritability index (0-30)
  that switches evaluation to severity-aware rules.

QUICK START:

  $ rehab init --test wrist_flexion_test=35 --test grip_test=40
  $ rehab track wrist_flexion am --reps 17 --pain 2
  $ rehab track wrist_flexion pm --skipped
  $ rehab show wrist_flexion
  $ rehab survey --rest-pain 2 --work "typing:4:30:20"
  $ rehab list

SURFACES:

  rehab mcp      Model Context Protocol server on stdio
  rehab serve    JSON HTTP API for the web front end

SYNC:

  Set "backend": "charm" in ~/.config/rehab/config.json (or REHAB_BACKEND=charm)
  to store data in Charm KV, E2E encrypted and synced across devices.

  $ rehab sync link      # Link device to your Charm account
  $ rehab sync status    # Check sync status`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.LogLevel
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		logger, logCloser = logging.Setup(logging.Params{
			FileName: config.ExpandPath(cfg.LogFile),
			Level:    level,
			JSON:     cfg.LogJSON(),
		})

		if skipsStorage(cmd) {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		eng = engine.New(repo, catalog.Default(), engine.WithLogger(logger))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

// Execute runs the root command and releases resources on failure too.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeAll(); err == nil {
		err = cerr
	}
	return err
}

func closeAll() error {
	var err error
	if repo != nil {
		err = repo.Close()
		repo = nil
		eng = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	return err
}

func skipsStorage(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[noStorage]; ok {
			return true
		}
	}
	return cmd.Name() == "help" || cmd.Name() == "version"
}

// currentUser resolves --user, then the configured user.
func currentUser() string {
	if userFlag != "" {
		return userFlag
	}
	return cfg.GetUserID()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user id (default from config, or \"local\")")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: trace, debug, info, warn, error")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rehab version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "rehab", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
