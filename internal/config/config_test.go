package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	trackerDir := filepath.Join(projectDir, TrackerDir)
	if err := os.MkdirAll(trackerDir, 0o755); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, TrackerProjectDir: trackerDir, Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if got := c.PlanPath(); got != filepath.Join(projectDir, defaultPlanFile) {
		t.Fatalf("plan path = %s", got)
	}
	if got := c.Delimiter(); got != '*' {
		t.Fatalf("delimiter = %q, want '*'", got)
	}
	if got := c.StartDate().Format(DateLayout); got != "2026-01-01" {
		t.Fatalf("start date = %s", got)
	}
	if c.TotalWeeks() != 52 {
		t.Fatalf("total weeks = %d", c.TotalWeeks())
	}
}

func TestInitTrackerDirWritesDefaultConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitTrackerDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, dir := range []string{"logs", "exports"} {
		if info, err := os.Stat(filepath.Join(projectDir, TrackerDir, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", dir, err)
		}
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config from generated yaml: %v", err)
	}
	if cfg.Title() != "The Year of the Word" {
		t.Fatalf("title = %q", cfg.Title())
	}
	if cfg.ExportDir() != filepath.Join(projectDir, TrackerDir, "exports") {
		t.Fatalf("export dir = %s", cfg.ExportDir())
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	trackerDir := filepath.Join(projectDir, TrackerDir)
	if err := os.MkdirAll(trackerDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
title: Gospels in a Year
plan:
  file: plans/gospels.tsv
  delimiter: "\t"
progress:
  file: /tmp/elsewhere/progress.csv
schedule:
  start_date: "2025-09-01"
  total_weeks: 26
`)
	if err := os.WriteFile(filepath.Join(trackerDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, TrackerProjectDir: trackerDir, Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.Title() != "Gospels in a Year" {
		t.Fatalf("title = %q", c.Title())
	}
	if c.PlanPath() != filepath.Join(projectDir, "plans", "gospels.tsv") {
		t.Fatalf("expected plan path to be resolved, got %s", c.PlanPath())
	}
	if c.Delimiter() != '\t' {
		t.Fatalf("delimiter = %q, want tab", c.Delimiter())
	}
	if c.ProgressPath() != "/tmp/elsewhere/progress.csv" {
		t.Fatalf("absolute progress path rewritten: %s", c.ProgressPath())
	}
	if c.TotalWeeks() != 26 {
		t.Fatalf("total weeks = %d", c.TotalWeeks())
	}
	if got := c.StartDate().Format(DateLayout); got != "2025-09-01" {
		t.Fatalf("start date = %s", got)
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	cases := map[string]string{
		"multi-char delimiter": "plan:\n  delimiter: \"**\"\n",
		"bad start date":       "schedule:\n  start_date: \"Jan 1\"\n",
		"negative weeks":       "schedule:\n  total_weeks: -3\n",
		"same files":           "plan:\n  file: same.csv\nprogress:\n  file: same.csv\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			trackerDir := filepath.Join(projectDir, TrackerDir)
			if err := os.MkdirAll(trackerDir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(trackerDir, "config.yaml"), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			c := &Config{ProjectDir: projectDir, TrackerProjectDir: trackerDir, Project: defaultProjectConfig()}
			if err := c.loadProjectConfig(); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestDotEnvOverridesConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitTrackerDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	// Register the keys with t.Setenv so godotenv's writes are undone after the test.
	t.Setenv(EnvStartDate, "")
	t.Setenv(EnvDelimiter, "")
	os.Unsetenv(EnvStartDate)
	os.Unsetenv(EnvDelimiter)
	dotEnv := "WORDTRACK_START_DATE=2027-01-03\nWORDTRACK_DELIMITER=|\n"
	if err := os.WriteFile(filepath.Join(projectDir, ".env"), []byte(dotEnv), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if got := cfg.StartDate().Format(DateLayout); got != "2027-01-03" {
		t.Fatalf("start date = %s, want .env override", got)
	}
	if cfg.Delimiter() != '|' {
		t.Fatalf("delimiter = %q, want '|'", cfg.Delimiter())
	}
}
