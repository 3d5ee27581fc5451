// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/minisketch"
	"github.com/btcsuite/minisketch/field"
	"github.com/btcsuite/minisketch/sketchdb"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultBits         = 32
	defaultDbType       = sketchdb.BackendLevelDB
	defaultLogLevel     = "info"
	defaultLogDirname   = "logs"
	defaultLogFilename  = "sketchctl.log"
	defaultStoreDirname = "sketches"

	// fixedSeedName selects minisketch.FixedSeed on the command line.
	fixedSeedName = "fixed"
)

var (
	defaultAppDir = btcutil.AppDataDir("sketchctl", false)
)

// config defines the global configuration options and the subcommands.
//
// See loadConfig for details on the configuration load process.
type config struct {
	AppDir        string `short:"A" long:"appdir" description:"Path to application home directory"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	DbType        string `long:"dbtype" description:"Database backend to use for stored sketches {leveldb, pebble}"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	Caps   capsCmd   `command:"caps" description:"Show the supported element sizes and field implementations"`
	Build  buildCmd  `command:"build" description:"Build a sketch from a list of elements"`
	Merge  mergeCmd  `command:"merge" description:"Combine sketches into the sketch of their symmetric difference"`
	Decode decodeCmd `command:"decode" description:"Recover the elements summarized by a sketch"`
	Size   sizeCmd   `command:"size" description:"Plan the capacity of a sketch"`
	List   listCmd   `command:"list" description:"List the stored sketches"`
	Delete deleteCmd `command:"delete" description:"Remove stored sketches"`
}

// sketchOpts are the parameters shared by the commands that create or read
// sketches.
type sketchOpts struct {
	Bits           uint32 `short:"b" long:"bits" description:"Element size in bits {1-64}"`
	Implementation string `short:"i" long:"impl" description:"Field implementation {generic, clmul, table}"`
	Capacity       int    `short:"c" long:"capacity" description:"Number of differences the sketch can recover -- Derived from the sketch size when reading and omitted"`
	Seed           string `long:"seed" description:"Root finding seed as a number or \"fixed\" -- Random when omitted"`
}

// sketchParams are validated sketchOpts.
type sketchParams struct {
	bits     uint32
	impl     minisketch.Implementation
	capacity int
	seed     uint64
	hasSeed  bool
}

// cfg is the configuration of the running command.  It is set by newConfig
// and finalized by loadConfig.
var cfg *config

// newConfig returns a configuration with the default values applied.
func newConfig() *config {
	opts := sketchOpts{
		Bits:           defaultBits,
		Implementation: minisketch.Generic.String(),
	}
	c := &config{
		AppDir:     defaultAppDir,
		DbType:     defaultDbType,
		DebugLevel: defaultLogLevel,
	}
	c.Build.sketchOpts = opts
	c.Merge.sketchOpts = opts
	c.Decode.sketchOpts = opts
	c.Size.Bits = defaultBits
	c.Size.FPBits = defaultFPBits
	return c
}

// newParser returns a go-flags parser for the configuration.
func newParser(c *config) *flags.Parser {
	parser := flags.NewParser(c, flags.Default)
	parser.Usage = "[global options] <command> [command options]"
	return parser
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultAppDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// validDbType returns whether or not dbType is a supported database type.
func validDbType(dbType string) bool {
	for _, knownType := range sketchdb.Backends {
		if dbType == knownType {
			return true
		}
	}

	return false
}

// loadConfig validates the global options, which go-flags has already parsed
// by the time a command runs, and applies the logging configuration.
func loadConfig(c *config) error {
	c.AppDir = cleanAndExpandPath(c.AppDir)
	if c.LogDir == "" {
		c.LogDir = filepath.Join(c.AppDir, defaultLogDirname)
	}
	c.LogDir = cleanAndExpandPath(c.LogDir)

	// Special show command to list supported subsystems and exit.
	if c.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	if !validDbType(c.DbType) {
		str := "the specified database type [%v] is invalid -- " +
			"supported types %v"
		return fmt.Errorf(str, c.DbType, sketchdb.Backends)
	}

	if err := parseAndSetDebugLevels(c.DebugLevel); err != nil {
		return err
	}

	return nil
}

// storePath returns the directory of the sketch store for the configured
// backend.
func (c *config) storePath() string {
	return filepath.Join(c.AppDir, defaultStoreDirname, c.DbType)
}

// parseSeed parses a seed given on the command line.
func parseSeed(s string) (uint64, error) {
	if s == fixedSeedName {
		return minisketch.FixedSeed, nil
	}
	seed, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("the specified seed [%v] is invalid", s)
	}
	return seed, nil
}

// params validates the options.  A capacity of zero is accepted and left to
// the caller to derive.
func (o *sketchOpts) params() (*sketchParams, error) {
	if !minisketch.BitsSupported(o.Bits) {
		str := "the specified element size [%v] is invalid -- must be " +
			"between 1 and 64"
		return nil, fmt.Errorf(str, o.Bits)
	}

	impl, ok := field.ParseImplementation(o.Implementation)
	if !ok {
		str := "the specified implementation [%v] is invalid"
		return nil, fmt.Errorf(str, o.Implementation)
	}
	if !minisketch.ImplementationSupported(o.Bits, impl) {
		str := "the specified implementation [%v] does not support " +
			"%d-bit elements on this machine"
		return nil, fmt.Errorf(str, impl, o.Bits)
	}

	if o.Capacity < 0 {
		str := "the specified capacity [%v] is invalid"
		return nil, fmt.Errorf(str, o.Capacity)
	}

	p := &sketchParams{
		bits:     o.Bits,
		impl:     impl,
		capacity: o.Capacity,
	}
	if o.Seed != "" {
		seed, err := parseSeed(o.Seed)
		if err != nil {
			return nil, err
		}
		p.seed = seed
		p.hasSeed = true
	}
	return p, nil
}

// newSketch returns an empty sketch with the parameters and the given
// capacity.
func (p *sketchParams) newSketch(capacity int) (*minisketch.Sketch, error) {
	s, err := minisketch.New(p.bits, p.impl, capacity)
	if err != nil {
		return nil, err
	}
	if p.hasSeed {
		s.SetSeed(p.seed)
	}
	return s, nil
}
