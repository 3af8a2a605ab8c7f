package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// EnvConfig names the environment variable holding an explicit config path.
const EnvConfig = "BINDER_CONFIG"

// Config holds application configuration.
type Config struct {
	// DatabaseFile is the SQLite database path
	DatabaseFile string

	// AttachmentsDir holds copied-in attachment files, one per generated id
	AttachmentsDir string

	// BackupDir receives backup archives
	BackupDir string

	// ExportDir receives export documents
	ExportDir string

	// LogFile is where process logs are appended. The MCP server cannot
	// log to stdout because stdout carries the protocol stream.
	LogFile string

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// All tools are enabled by default. Unknown tool names are logged as warnings.
	DisabledTools []string

	// DisabledGroups is a list of MCP tool groups (name prefixes such as
	// "tag" or "export") to exclude wholesale. Unknown group names are
	// logged as warnings.
	DisabledGroups []string
}

// DefaultConfig returns the default configuration rooted at baseDir.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		DatabaseFile:   filepath.Join(baseDir, "binder.db"),
		AttachmentsDir: filepath.Join(baseDir, "attachments"),
		BackupDir:      filepath.Join(baseDir, "backups"),
		ExportDir:      filepath.Join(baseDir, "exports"),
		LogFile:        filepath.Join(baseDir, "binder.log"),
	}
}

// Load resolves configuration. An explicit path in $BINDER_CONFIG must load
// cleanly; otherwise baseDir/config.ini is used when present, and a missing
// file yields defaults. The baseDir parameter allows tests to use t.TempDir()
// instead of ~/.binder.
func Load(baseDir string) (*Config, error) {
	if explicit := os.Getenv(EnvConfig); explicit != "" {
		return loadFile(explicit, baseDir)
	}

	configPath := filepath.Join(baseDir, "config.ini")
	if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(baseDir), nil
		}
		return nil, err
	}
	return loadFile(configPath, baseDir)
}

// loadFile parses an INI config file. Keys left unset keep their defaults.
func loadFile(configPath, baseDir string) (*Config, error) {
	file, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
	}

	cfg := DefaultConfig(baseDir)
	if v := file.Section("database").Key("file").String(); v != "" {
		cfg.DatabaseFile = v
	}
	cfg.DBMaxOpenConns = file.Section("database").Key("max_open_conns").MustInt(0)
	cfg.DBMaxIdleConns = file.Section("database").Key("max_idle_conns").MustInt(0)
	if v := file.Section("attachments").Key("dir").String(); v != "" {
		cfg.AttachmentsDir = v
	}
	if v := file.Section("backup").Key("dir").String(); v != "" {
		cfg.BackupDir = v
	}
	if v := file.Section("export").Key("dir").String(); v != "" {
		cfg.ExportDir = v
	}
	if v := file.Section("log").Key("file").String(); v != "" {
		cfg.LogFile = v
	}
	if key := file.Section("mcp").Key("disabled_tools"); key.String() != "" {
		cfg.DisabledTools = cleanList(key.Strings(","))
	}
	if key := file.Section("mcp").Key("disabled_groups"); key.String() != "" {
		cfg.DisabledGroups = cleanList(key.Strings(","))
	}

	return cfg, nil
}

// EnsureDirs creates the attachment, backup, and export directories.
// The database directory is created by db.Init.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.AttachmentsDir, c.BackupDir, c.ExportDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// cleanList drops empty elements left over from trailing separators.
func cleanList(items []string) []string {
	result := make([]string, 0, len(items))
	for _, s := range items {
		if s != "" {
			result = append(result, s)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
