// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/minisketch/sketchdb"
	flags "github.com/jessevdk/go-flags"
)

// session is the state shared by the steps of a single command.  The sketch
// store is only opened when a command refers to it.
type session struct {
	in  io.Reader
	out io.Writer

	dbType    string
	storePath string
	db        *sketchdb.DB
}

// newSession returns a session reading from standard input and writing
// results to standard output.
func newSession(c *config) *session {
	return &session{
		in:        os.Stdin,
		out:       os.Stdout,
		dbType:    c.DbType,
		storePath: c.storePath(),
	}
}

// store returns the sketch store, opening it on first use.
func (s *session) store() (*sketchdb.DB, error) {
	if s.db != nil {
		return s.db, nil
	}

	ctlLog.Debugf("Opening %s sketch store at %s", s.dbType, s.storePath)
	db, err := sketchdb.Open(s.dbType, s.storePath)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

// close releases the resources held by the session.
func (s *session) close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		ctlLog.Errorf("Failed to close sketch store: %v", err)
	}
	s.db = nil
}

// runCommand finishes loading the configuration, sets up logging and runs
// fn.  It is called by the Execute method of every command since go-flags
// parses the global options before dispatching.
func runCommand(fn func(*session) error) error {
	if err := loadConfig(cfg); err != nil {
		return err
	}

	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return err
		}
		defer closeLogRotator()
	}

	s := newSession(cfg)
	defer s.close()

	return fn(s)
}

// realMain is the real main function for the utility.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func realMain() error {
	cfg = newConfig()
	parser := newParser(cfg)
	_, err := parser.Parse()
	return err
}

func main() {
	if err := realMain(); err != nil {
		// The parser has already printed the error.
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
