// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
)

const (
	defaultLogFilename    = "utxotool.log"
	defaultLogLevel       = "info"
	defaultMaxLogFiles    = 3
	defaultMaxLogFileSize = 10
)

var (
	defaultHomeDir = btcutil.AppDataDir("utxotool", false)
	defaultLogDir  = filepath.Join(defaultHomeDir, "logs")
)

// config defines the configuration options for utxotool.
type config struct {
	Request string `short:"r" long:"request" description:"Path to the JSON request, - reads standard input" default:"-"`
	Mode    string `short:"m" long:"mode" description:"Operation to run" choice:"plan" choice:"sign" choice:"preimage" choice:"compile" choice:"psbt" choice:"psbt-preimage" default:"sign"`

	LogDir         string `long:"logdir" description:"Directory to log output"`
	NoFileLogging  bool   `long:"nofilelogging" description:"Disable file logging"`
	MaxLogFiles    int    `long:"maxlogfiles" description:"Maximum logfiles to keep (0 for no rotation)"`
	MaxLogFileSize int    `long:"maxlogfilesize" description:"Maximum logfile size in MB"`
	DebugLevel     string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser
	// to otheruser's home directory.
	if strings.HasPrefix(path, "~") {
		var username string
		homeDir := defaultHomeDir

		if i := strings.IndexRune(path, os.PathSeparator); i != -1 {
			username = path[1:i]
		} else {
			username = path[1:]
		}

		if username == "" {
			if u, err := user.Current(); err == nil {
				homeDir = u.HomeDir
			}
		} else if u, err := user.Lookup(username); err == nil {
			homeDir = u.HomeDir
		}

		path = strings.Replace(path, "~"+username, homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// loadConfig parses the command line and sets up logging.
func loadConfig() (*config, error) {
	cfg := config{
		LogDir:         defaultLogDir,
		MaxLogFiles:    defaultMaxLogFiles,
		MaxLogFileSize: defaultMaxLogFileSize,
		DebugLevel:     defaultLogLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	if !cfg.NoFileLogging {
		cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)

		err := initLogRotator(
			logFile, cfg.MaxLogFileSize, cfg.MaxLogFiles,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err = fmt.Errorf("%s: %w", "loadConfig", err)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)

		return nil, err
	}

	cfg.Request = cleanAndExpandPath(cfg.Request)

	return &cfg, nil
}
