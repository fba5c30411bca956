// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/txcompiler/build"
	"github.com/btcsuite/txcompiler/internal/cfgutil"
	"github.com/btcsuite/txcompiler/netparams"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/btcsuite/txcompiler/wallet/txauthor"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "txcompiler.conf"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "txcompiler.log"
	defaultMode           = modePreImage
	defaultFeeRate        = 1
	defaultStrategy       = "all"
)

// The modes select what is done with each request.
const (
	modePreImage = "preimage"
	modeCompile  = "compile"
	modeSign     = "sign"
	modePlan     = "plan"
)

var (
	defaultLogLevel   = build.LogLevel
	txcompilerHomeDir = btcutil.AppDataDir("txcompiler", false)
	defaultConfigFile = filepath.Join(txcompilerHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(txcompilerHomeDir, defaultLogDirname)
)

type config struct {
	// General application behavior
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	NoLogFile   bool   `long:"nologfile" description:"Only log to stderr"`

	// Network selection
	TestNet3 bool `long:"testnet" description:"Encode addresses for the test network (version 3)"`
	TestNet4 bool `long:"testnet4" description:"Encode addresses for the test network (version 4)"`
	RegTest  bool `long:"regtest" description:"Encode addresses for the regression test network"`
	SigNet   bool `long:"signet" description:"Encode addresses for the default signet"`
	SimNet   bool `long:"simnet" description:"Encode addresses for the simulation test network"`

	// Compiler options
	Mode         string               `short:"m" long:"mode" description:"What to do with each request" choice:"preimage" choice:"compile" choice:"sign" choice:"plan"`
	FeeRate      *cfgutil.FeeRateFlag `long:"feerate" description:"Fee rate in sat/vB for requests that do not set one"`
	Strategy     string               `long:"strategy" description:"Input selection strategy for requests that do not set one {all, in-order, ascending, descending}"`
	DustRelayFee *cfgutil.AmountFlag  `long:"dustrelayfee" description:"Dust relay fee per kvB, in BTC or as '<n> sat' (default: network policy)"`
	PSBT         bool                 `long:"psbt" description:"Also export unsigned transactions as base64 PSBT packets"`
	KeyFile      string               `short:"k" long:"keyfile" description:"File holding the private keys to sign with, one per line as '<txid>:<vout> <key>' or a single '<key>'"`
	NoConfirm    bool                 `long:"noconfirm" description:"Do not ask for confirmation before signing mainnet transactions"`
	Jobs         int                  `short:"j" long:"jobs" description:"Number of requests processed concurrently"`
}

// cleanAndExpandPath expands environement variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(txcompilerHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace":
		fallthrough
	case "debug":
		fallthrough
	case "info":
		fallthrough
	case "warn":
		fallthrough
	case "error":
		fallthrough
	case "critical":
		return true
	}
	return false
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	// Convert the subsystemLoggers map keys to a slice.
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}

	// Sort the subsytems for stable display.
	sort.Strings(subsystems)
	return subsystems
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !validLogLevel(debugLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		setLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "the specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsytems %v"
			return fmt.Errorf(str, subsysID, supportedSubsystems())
		}

		// Validate log level.
		if !validLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// selectNetwork returns the network chosen by the network flags. Multiple
// networks can't be selected simultaneously.
func selectNetwork(cfg *config) (*netparams.Params, error) {
	net := &netparams.MainNetParams
	numNets := 0
	if cfg.TestNet3 {
		net = &netparams.TestNet3Params
		numNets++
	}
	if cfg.TestNet4 {
		net = &netparams.TestNet4Params
		numNets++
	}
	if cfg.RegTest {
		net = &netparams.RegressionNetParams
		numNets++
	}
	if cfg.SigNet {
		net = &netparams.SigNetParams
		numNets++
	}
	if cfg.SimNet {
		net = &netparams.SimNetParams
		numNets++
	}
	if numNets > 1 {
		return nil, fmt.Errorf("the testnet, testnet4, regtest, " +
			"signet and simnet params can't be used together -- " +
			"choose one")
	}

	// A dust relay fee given on the command line replaces the network
	// policy.
	if cfg.DustRelayFee != nil && cfg.DustRelayFee.IsSet() {
		withFee := *net
		withFee.DustRelayFee = cfg.DustRelayFee.Amount
		net = &withFee
	}

	return net, nil
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in txcompiler functioning properly without any config
// settings while still allowing the user to override settings with config files
// and command line options.  Command line options always take precedence.
// The remaining arguments are the request files.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		DebugLevel:   defaultLogLevel,
		ConfigFile:   defaultConfigFile,
		LogDir:       defaultLogDir,
		Mode:         defaultMode,
		FeeRate:      cfgutil.NewFeeRateFlag(btcunit.NewSatPerVByte(defaultFeeRate)),
		Strategy:     defaultStrategy,
		DustRelayFee: cfgutil.NewAmountFlag(-1),
		Jobs:         runtime.NumCPU(),
	}

	// A config file in the current directory takes precedence.
	exists, err := cfgutil.FileExists(defaultConfigFilename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	if exists {
		cfg.ConfigFile = defaultConfigFilename
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default)
	_, err = preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			preParser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	funcName := "loadConfig"
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version())
		os.Exit(0)
	}

	// Load additional config from file.
	var configFileError error
	parser := flags.NewParser(&cfg, flags.Default)
	configFilePath := cleanAndExpandPath(preCfg.ConfigFile)
	err = flags.NewIniParser(parser).ParseFile(configFilePath)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
			return nil, nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Choose the active network params based on the selected network.
	net, err := selectNetwork(&cfg)
	if err != nil {
		err := fmt.Errorf("%s: %w", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}
	activeNet = net

	if _, err := txauthor.ParseStrategy(cfg.Strategy); err != nil {
		err := fmt.Errorf("%s: %w", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	if cfg.Jobs < 1 {
		str := "%s: the number of jobs must be positive -- parsed [%d]"
		err := fmt.Errorf(str, funcName, cfg.Jobs)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Append the network type to the log directory so it is "namespaced"
	// per network.
	if !cfg.NoLogFile {
		cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
		cfg.LogDir = filepath.Join(cfg.LogDir, activeNet.Name)

		// Initialize log rotation.  After log rotation has been
		// initialized, the logger variables may be used.
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %w", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	if len(remainingArgs) == 0 {
		str := "%s: no request files given -- use - to read stdin"
		err := fmt.Errorf(str, funcName)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	for _, name := range remainingArgs {
		if name == stdinName {
			continue
		}
		exists, err := cfgutil.FileExists(name)
		if err == nil && !exists {
			err = fmt.Errorf("request file %s does not exist", name)
		}
		if err != nil {
			err := fmt.Errorf("%s: %w", funcName, err)
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
	}

	// Warn about missing config file after the final command line parse
	// succeeds.  This prevents the warning on help messages and invalid
	// options.
	if configFileError != nil {
		log.Warnf("%v", configFileError)
	}

	return &cfg, remainingArgs, nil
}
