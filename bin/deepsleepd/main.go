// SPDX-FileCopyrightText: 2024 - 2026 deepsleep contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"io"

	"github.com/linuxdeepin/go-lib/log"
	"github.com/spf13/cobra"

	"github.com/deepsleep-tools/deepsleep/config"
	"github.com/deepsleep-tools/deepsleep/engine"
	"github.com/deepsleep-tools/deepsleep/journal"
	"github.com/deepsleep-tools/deepsleep/powersupply"
	"github.com/deepsleep-tools/deepsleep/session"
	"github.com/deepsleep-tools/deepsleep/sleeper"
)

var logger = log.NewLogger("deepsleep")

var (
	configPath  string
	durationSec int
	journalPath string
)

var rootCmd = &cobra.Command{
	Use:   "deepsleepd",
	Short: "Keep a laptop asleep for a fixed duration, hibernating when the battery needs it",
	Long: `deepsleepd suspends the machine for a requested total duration and watches
every wake. Hardware that fires early wake events or silently fails to
re-enter sleep is compensated by re-suspending for the remaining time; once
the duration has elapsed the machine hibernates if it is draining its
battery, or keeps suspending while on wall power. Opening the lid at any
point ends the session.`,
	Run: func(cmd *cobra.Command, args []string) {
		run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath,
		"configuration file")
	rootCmd.Flags().IntVarP(&durationSec, "duration", "d", 0,
		"total away duration in seconds (overrides config)")
	rootCmd.Flags().StringVar(&journalPath, "journal", "",
		"decision journal file (overrides config)")
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Fatal(err)
	}
}

func run() {
	cfg := config.LoadSafe(configPath)
	if durationSec > 0 {
		cfg.TotalDurationSec = durationSec
	}
	if journalPath != "" {
		cfg.JournalPath = journalPath
	}

	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Warning("failed to open journal, decisions will not be recorded:", err)
		jnl = journal.NewWriter(io.Discard)
	}
	defer jnl.Close()

	slp, err := sleeper.NewLoginSleeper(cfg.WakealarmPath)
	if err != nil {
		logger.Fatal("failed to connect system bus:", err)
	}
	defer slp.Destroy()

	reader := powersupply.NewReader(powersupply.Config{
		LidStatePath:    cfg.LidStatePath,
		PowerSupplyRoot: cfg.PowerSupplyRoot,
	})
	reader.SetUPowerFallback(slp.SystemBus())

	clock := session.NewClock()
	sess := session.New(clock, cfg.TotalDuration())
	logger.Infof("away for %v, deadline %v", sess.Total, sess.Deadline())

	eng := engine.New(engine.Options{
		Session:     sess,
		Clock:       clock,
		Reader:      reader,
		Sleeper:     slp,
		Locker:      sleeper.NewScreenLocker(),
		Journal:     jnl,
		SettleDelay: cfg.SettleDelay(),
	})
	eng.Run()
}
