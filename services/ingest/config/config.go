// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config carries the siteupdate run configuration: the original
// tool's arguments plus logging and telemetry settings, loadable from an
// optional YAML file with flags layered on top by the CLI.
//
// Validation failures here are the one thing that exits the tool nonzero.
// Problems in the data itself never do.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is one siteupdate run's configuration.
type Config struct {
	// DataRoot is the highway data directory (the original
	// highwaydatapath argument).
	DataRoot string `yaml:"highwaydatapath" validate:"required"`

	// SystemsFile is the systems list name relative to DataRoot.
	SystemsFile string `yaml:"systemsfile" validate:"required"`

	// NumThreads is the waypoint-phase worker count.
	NumThreads int `yaml:"numthreads" validate:"min=1"`

	// SplitRegion is passed through to the graph generation stage.
	SplitRegion string `yaml:"splitregion"`

	// UserList optionally names the travelers to process; empty means
	// every .list file under UserListPath. Consumed by the traveler
	// stage, carried here because it is part of the CLI contract.
	UserList     []string `yaml:"userlist"`
	UserListPath string   `yaml:"userlistfilepath"`

	// LogDir is where the flat error and datacheck logs are written.
	LogDir string `yaml:"logdir" validate:"required"`

	// TraceExporter is "none" or "stdout".
	TraceExporter string `yaml:"traces" validate:"oneof=none stdout"`

	// MetricExporter is "none", "stdout", or "prometheus".
	MetricExporter string `yaml:"metrics" validate:"oneof=none stdout prometheus"`

	// PrometheusAddr is the /metrics listen address when MetricExporter
	// is "prometheus".
	PrometheusAddr string `yaml:"prometheus_addr"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when no file and no flags are
// given.
func Default() Config {
	return Config{
		DataRoot:       "../HighwayData",
		SystemsFile:    "systems.csv",
		NumThreads:     4,
		UserListPath:   "../UserData/list_files",
		LogDir:         ".",
		TraceExporter:  "none",
		MetricExporter: "none",
		PrometheusAddr: ":9464",
	}
}

// Load returns Default overlaid with the YAML file at path. An empty path
// returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration and reports the first problem.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid configuration: field %s fails %q", f.Field(), f.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
