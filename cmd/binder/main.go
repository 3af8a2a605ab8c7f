package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/binder/internal/config"
	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/logging"
	"github.com/hpungsan/binder/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"create-notebook": true, "rename-notebook": true, "set-notebook-status": true, "list-notebooks": true,
	"create-entry": true, "list-entries": true,
	"create-note": true, "list-notes": true,
	"create-tag": true, "list-tags": true, "attach-tag": true, "detach-tag": true,
	"rename-tag": true, "merge-tags": true, "delete-tag": true,
	"search": true, "search-tag": true,
	"export": true, "import": true, "backup": true, "restore": true,
	"help": true,
}

// splitGlobalFlags consumes a leading --verbose flag so it applies to
// every mode, including the MCP server where urfave/cli never runs.
func splitGlobalFlags(args []string) ([]string, bool) {
	if len(args) >= 2 && (args[1] == "--verbose" || args[1] == "-V") {
		return append([]string{args[0]}, args[2:]...), true
	}
	return args, false
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false // No args → MCP server
	}
	arg := args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	arg := args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ ___ _  _ ___  ___ ___
  | _ )_ _| \| |   \| __| _ \
  | _ \| || .` + "`" + ` | |) | _||   /
  |___/___|_|\_|___/|___|_|_\

  Personal record keeper

  Usage: binder <command> [options]
         binder --help

  MCP server mode requires piped input.`)
}

func main() {
	args, verbose := splitGlobalFlags(os.Args)

	// No args + interactive terminal → show banner and exit
	if len(args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before config and DB init (neither needed)
	if isHelpOrVersion(args) {
		app := newCLIApp(nil, nil)
		if err := app.Run(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".binder")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.New(cfg.LogFile, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Restore swaps out the database file, so it must run before the
	// database is opened. It is also the one command with no MCP tool.
	if len(args) >= 2 && args[1] == "restore" {
		app := newCLIApp(nil, cfg)
		if err := app.Run(args); err != nil {
			logger.Error().Err(err).Msg("restore failed")
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		logger.Info().Msg("backup restored")
		return
	}

	database, err := db.Init(cfg.DatabaseFile)
	if err != nil {
		logger.Error().Err(err).Msg("database init failed")
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	// CLI mode: known subcommand
	if isCLIMode(args) {
		logger.Debug().Str("command", args[1]).Msg("running CLI command")
		app := newCLIApp(database, cfg)
		if err := app.Run(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", args[1])
		fmt.Fprintf(os.Stderr, "Run 'binder --help' for usage.\n")
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn().Strs("tools", unknown).Msg("config disables unknown tools")
	}
	if unknown := mcp.ValidateDisabledGroups(cfg.DisabledGroups); len(unknown) > 0 {
		logger.Warn().Strs("groups", unknown).Msg("config disables unknown tool groups")
	}

	// MCP server mode (default)
	logger.Info().Str("version", Version).Str("database", cfg.DatabaseFile).Msg("starting MCP server")
	if err := mcp.Run(database, cfg, Version); err != nil {
		logger.Error().Err(err).Msg("MCP server exited")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
