// Package log provides Redscout's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a
// Formatter (text or JSON) into one or more Outputs, keeping output
// consistent across the server, poller, workers, and CLI.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("server"))
//	l.Info("server started", log.Str("http", ":8080"))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config, supporting
// level and format selection from environment variables. RedirectStdLog
// routes standard-library log output (e.g. Pebble's) through the facade.
package log
