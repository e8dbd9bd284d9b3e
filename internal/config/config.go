// internal/config/config.go
//
// This package handles configuration and the .wordtrack directory structure.
// Every project that uses wordtrack gets a .wordtrack/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// TrackerDir is the name of the directory we create in each project
	TrackerDir = ".wordtrack"

	// DateLayout is the on-disk format for every calendar date we read or write.
	DateLayout = "2006-01-02"

	defaultTitle        = "The Year of the Word"
	defaultPlanFile     = "bible_plan.csv"
	defaultProgressFile = "user_progress.csv"
	defaultDelimiter    = "*"
	defaultStartDate    = "2026-01-01"
	defaultTotalWeeks   = 52
	defaultExportDir    = TrackerDir + "/exports"
)

// Environment overrides, usually supplied through a .env file next to the plan.
const (
	EnvPlanFile     = "WORDTRACK_PLAN_FILE"
	EnvProgressFile = "WORDTRACK_PROGRESS_FILE"
	EnvStartDate    = "WORDTRACK_START_DATE"
	EnvDelimiter    = "WORDTRACK_DELIMITER"
)

const defaultProjectConfigYAML = `# wordtrack project configuration
version: 1

title: The Year of the Word

plan:
  # Static reading plan. Columns: Week, Reading Range, Focus.
  file: bible_plan.csv
  # Single-character field separator used by the plan file.
  delimiter: "*"

progress:
  # Rewritten in full every time progress is saved.
  file: user_progress.csv

schedule:
  # CHECK YOUR YEAR: week 1 starts on this date.
  start_date: "2026-01-01"
  total_weeks: 52

export:
  dir: .wordtrack/exports
`

// PlanConfig locates the static reading plan.
type PlanConfig struct {
	File      string `yaml:"file"`
	Delimiter string `yaml:"delimiter"`
}

// ProgressConfig locates the mutable progress file.
type ProgressConfig struct {
	File string `yaml:"file"`
}

// ScheduleConfig anchors the plan to the calendar.
type ScheduleConfig struct {
	StartDate  string `yaml:"start_date"`
	TotalWeeks int    `yaml:"total_weeks"`
}

// ExportConfig controls where spreadsheet exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ProjectConfig models .wordtrack/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Title    string         `yaml:"title"`
	Plan     PlanConfig     `yaml:"plan"`
	Progress ProgressConfig `yaml:"progress"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Export   ExportConfig   `yaml:"export"`
}

// Config holds the runtime configuration for wordtrack.
type Config struct {
	// ProjectDir is the directory where the user ran `wordtrack` from
	ProjectDir string

	// TrackerProjectDir is ProjectDir/.wordtrack
	TrackerProjectDir string

	Project ProjectConfig

	startDate time.Time
}

// InitTrackerDir creates the .wordtrack directory structure in the given project directory.
//
// Structure created:
// .wordtrack/
// ├── config.yaml
// ├── logs/      <- journal.log
// └── exports/   <- spreadsheet exports
func InitTrackerDir(projectDir string) error {
	trackerDir := filepath.Join(projectDir, TrackerDir)

	dirs := []string{
		filepath.Join(trackerDir, "logs"),
		filepath.Join(trackerDir, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(trackerDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
// A .env file in the project directory is loaded first so its values can
// override config.yaml.
func NewConfig(projectDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectDir:        projectDir,
		TrackerProjectDir: filepath.Join(projectDir, TrackerDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.TrackerProjectDir, "config.yaml")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.TrackerProjectDir, "logs")
}

// JournalPath returns the logbook file used by the dashboard.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journal.log")
}

// PlanPath returns the absolute path of the plan file.
func (c *Config) PlanPath() string {
	return c.Project.Plan.File
}

// Delimiter returns the plan file's field separator.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Project.Plan.Delimiter)
	return r
}

// ProgressPath returns the absolute path of the progress file.
func (c *Config) ProgressPath() string {
	return c.Project.Progress.File
}

// ExportDir returns the directory spreadsheet exports are written to.
func (c *Config) ExportDir() string {
	return c.Project.Export.Dir
}

// StartDate returns the first day of week 1.
func (c *Config) StartDate() time.Time {
	return c.startDate
}

// TotalWeeks returns the number of weeks in the plan.
func (c *Config) TotalWeeks() int {
	return c.Project.Schedule.TotalWeeks
}

// Title returns the dashboard heading.
func (c *Config) Title() string {
	return c.Project.Title
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err == nil {
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	parsed.applyDefaults()
	parsed.applyEnvOverrides()
	parsed.normalize(c.ProjectDir)
	start, err := parsed.validate()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	c.startDate = start
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Title:   defaultTitle,
		Plan: PlanConfig{
			File:      defaultPlanFile,
			Delimiter: defaultDelimiter,
		},
		Progress: ProgressConfig{File: defaultProgressFile},
		Schedule: ScheduleConfig{
			StartDate:  defaultStartDate,
			TotalWeeks: defaultTotalWeeks,
		},
		Export: ExportConfig{Dir: defaultExportDir},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Title) == "" {
		pc.Title = defaultTitle
	}
	if strings.TrimSpace(pc.Plan.File) == "" {
		pc.Plan.File = defaultPlanFile
	}
	if pc.Plan.Delimiter == "" {
		pc.Plan.Delimiter = defaultDelimiter
	}
	if strings.TrimSpace(pc.Progress.File) == "" {
		pc.Progress.File = defaultProgressFile
	}
	if strings.TrimSpace(pc.Schedule.StartDate) == "" {
		pc.Schedule.StartDate = defaultStartDate
	}
	if pc.Schedule.TotalWeeks == 0 {
		pc.Schedule.TotalWeeks = defaultTotalWeeks
	}
	if strings.TrimSpace(pc.Export.Dir) == "" {
		pc.Export.Dir = defaultExportDir
	}
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv(EnvPlanFile)); value != "" {
		pc.Plan.File = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvProgressFile)); value != "" {
		pc.Progress.File = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvStartDate)); value != "" {
		pc.Schedule.StartDate = value
	}
	if value := os.Getenv(EnvDelimiter); value != "" {
		pc.Plan.Delimiter = value
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Title = strings.TrimSpace(pc.Title)
	pc.Plan.File = resolvePath(base, pc.Plan.File)
	pc.Progress.File = resolvePath(base, pc.Progress.File)
	pc.Export.Dir = resolvePath(base, pc.Export.Dir)
	pc.Schedule.StartDate = strings.TrimSpace(pc.Schedule.StartDate)
	if delim, err := strconv.Unquote(`"` + pc.Plan.Delimiter + `"`); err == nil {
		// allows `delimiter: "\t"` in yaml and WORDTRACK_DELIMITER=\t in .env
		pc.Plan.Delimiter = delim
	}
}

func (pc *ProjectConfig) validate() (time.Time, error) {
	if pc.Version < 1 {
		return time.Time{}, fmt.Errorf("config version must be >= 1")
	}
	if utf8.RuneCountInString(pc.Plan.Delimiter) != 1 {
		return time.Time{}, fmt.Errorf("plan.delimiter must be a single character, got %q", pc.Plan.Delimiter)
	}
	switch pc.Plan.Delimiter {
	case `"`, "\r", "\n":
		return time.Time{}, fmt.Errorf("plan.delimiter %q is not allowed", pc.Plan.Delimiter)
	}
	if pc.Schedule.TotalWeeks < 1 {
		return time.Time{}, fmt.Errorf("schedule.total_weeks must be >= 1")
	}
	start, err := time.Parse(DateLayout, pc.Schedule.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule.start_date must be YYYY-MM-DD: %w", err)
	}
	if pc.Plan.File == pc.Progress.File {
		return time.Time{}, fmt.Errorf("plan.file and progress.file must differ")
	}
	return start, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
