package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/config"
	memorymcp "github.com/robalobadob/memory/internal/mcp"
)

func main() {
	settingsFile := flag.String("settings", "", "path to a settings YAML file (defaults are embedded)")
	verbose := flag.Bool("v", false, "debug logging on stderr")
	flag.Parse()

	settings, err := config.Load(*settingsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol; logs go to stderr.
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tools := memorymcp.NewTools(ctx, settings, logger)
	defer tools.Close()

	s := server.NewMCPServer("memory", "1.0.0")
	tools.Register(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
