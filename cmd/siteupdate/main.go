// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command siteupdate ingests and validates the Travel Mapping highway
// dataset: the continent/country/region taxonomy, the highway system CSVs,
// and every route's wpt file, producing the in-memory network plus the
// flat error and datacheck logs later stages consume.
//
// Usage:
//
//	siteupdate --highwaydatapath ../HighwayData
//	siteupdate --highwaydatapath ../HighwayData --systemsfile systems.csv --numthreads 8
//	siteupdate --config siteupdate.yaml --metrics prometheus
//
// The exit code is nonzero only when the arguments or configuration are
// unusable. Problems found in the data itself are reported in
// siteupdate.log and never change the exit code.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/TravelMapping/siteupdate/pkg/logging"
	"github.com/TravelMapping/siteupdate/services/ingest"
	"github.com/TravelMapping/siteupdate/services/ingest/config"
	"github.com/TravelMapping/siteupdate/services/ingest/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	flags := config.Default()

	cmd := &cobra.Command{
		Use:           "siteupdate",
		Short:         "Ingest and validate the Travel Mapping highway dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// flags set on the command line win over the file
			overlayFlags(cmd, &cfg, &flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML configuration file")
	cmd.Flags().StringVar(&flags.DataRoot, "highwaydatapath", flags.DataRoot, "path of the highway data directory")
	cmd.Flags().StringVar(&flags.SystemsFile, "systemsfile", flags.SystemsFile, "systems list file, relative to the data path")
	cmd.Flags().IntVar(&flags.NumThreads, "numthreads", flags.NumThreads, "waypoint-phase worker count")
	cmd.Flags().StringVar(&flags.SplitRegion, "splitregion", flags.SplitRegion, "region to generate split graphs for")
	cmd.Flags().StringSliceVar(&flags.UserList, "userlist", flags.UserList, "travelers to process (default: all)")
	cmd.Flags().StringVar(&flags.UserListPath, "userlistfilepath", flags.UserListPath, "path of the traveler list files")
	cmd.Flags().StringVar(&flags.LogDir, "logdir", flags.LogDir, "directory for the flat error and datacheck logs")
	cmd.Flags().StringVar(&flags.TraceExporter, "traces", flags.TraceExporter, "trace exporter: none or stdout")
	cmd.Flags().StringVar(&flags.MetricExporter, "metrics", flags.MetricExporter, "metric exporter: none, stdout, or prometheus")
	cmd.Flags().StringVar(&flags.PrometheusAddr, "prometheus-addr", flags.PrometheusAddr, "listen address for /metrics")
	cmd.Flags().BoolVar(&flags.Debug, "debug", flags.Debug, "enable debug logging")
	return cmd
}

// overlayFlags copies every flag the user set explicitly over the loaded
// file configuration, so precedence is flags > file > defaults.
func overlayFlags(cmd *cobra.Command, cfg, flags *config.Config) {
	set := map[string]func(){
		"highwaydatapath":  func() { cfg.DataRoot = flags.DataRoot },
		"systemsfile":      func() { cfg.SystemsFile = flags.SystemsFile },
		"numthreads":       func() { cfg.NumThreads = flags.NumThreads },
		"splitregion":      func() { cfg.SplitRegion = flags.SplitRegion },
		"userlist":         func() { cfg.UserList = flags.UserList },
		"userlistfilepath": func() { cfg.UserListPath = flags.UserListPath },
		"logdir":           func() { cfg.LogDir = flags.LogDir },
		"traces":           func() { cfg.TraceExporter = flags.TraceExporter },
		"metrics":          func() { cfg.MetricExporter = flags.MetricExporter },
		"prometheus-addr":  func() { cfg.PrometheusAddr = flags.PrometheusAddr },
		"debug":            func() { cfg.Debug = flags.Debug },
	}
	for name, apply := range set {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logging.New(logging.Config{
		Debug:   cfg.Debug,
		LogDir:  cfg.LogDir,
		Service: "siteupdate",
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "siteupdate",
		TraceExporter:  cfg.TraceExporter,
		MetricExporter: cfg.MetricExporter,
		PrometheusAddr: cfg.PrometheusAddr,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	result, err := ingest.Run(ctx, ingest.Options{
		DataRoot:    cfg.DataRoot,
		SystemsFile: cfg.SystemsFile,
		NumThreads:  cfg.NumThreads,
		SplitRegion: cfg.SplitRegion,
	})
	if err != nil {
		return err
	}

	if err := writeLogs(cfg.LogDir, result); err != nil {
		return err
	}

	for _, orphan := range result.Data.RemainingWptFiles() {
		slog.Warn("wpt file not referenced by any csv", "path", orphan)
	}
	return nil
}

// writeLogs emits the two flat logs downstream stages consume: the
// configuration errors and the datacheck findings.
func writeLogs(dir string, result *ingest.Result) error {
	errPath := filepath.Join(dir, "siteupdate.log")
	errFile, err := os.Create(errPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", errPath, err)
	}
	defer errFile.Close()
	for _, entry := range result.Data.Errors.Entries() {
		fmt.Fprintln(errFile, entry)
	}

	dcPath := filepath.Join(dir, "datacheck.log")
	dcFile, err := os.Create(dcPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", dcPath, err)
	}
	defer dcFile.Close()
	findings := result.Data.Findings.Findings()
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = f.String()
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(dcFile, line)
	}
	return nil
}
