// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data root", func(c *Config) { c.DataRoot = "" }},
		{"empty systems file", func(c *Config) { c.SystemsFile = "" }},
		{"zero threads", func(c *Config) { c.NumThreads = 0 }},
		{"unknown metric exporter", func(c *Config) { c.MetricExporter = "statsd" }},
		{"unknown trace exporter", func(c *Config) { c.TraceExporter = "jaeger" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteupdate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"highwaydatapath: /data/HighwayData\nnumthreads: 8\nmetrics: prometheus\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/HighwayData", cfg.DataRoot)
	assert.Equal(t, 8, cfg.NumThreads)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
	assert.Equal(t, "systems.csv", cfg.SystemsFile, "unset fields keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("numthreads: [not a number\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}
