package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/config"
	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/render"
	"github.com/robalobadob/memory/internal/session"
)

func main() {
	seed := flag.Int64("seed", 0, "shuffle seed (random when unset)")
	settingsFile := flag.String("settings", "", "path to a settings YAML file (defaults are embedded)")
	verbose := flag.Bool("v", false, "debug logging on stderr")
	flag.Parse()
	_ = godotenv.Load()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	path := *settingsFile
	if path == "" {
		path = os.Getenv("MEMORY_SETTINGS_FILE")
	}
	settings, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var opts []game.Option
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts = append(opts, game.WithSeed(*seed))
		}
	})
	g, err := game.New(settings, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New(g, logger)
	if err := sess.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sess.Stop()

	fmt.Println("Type a card number and press enter to reveal it, q to quit.")
	if err := play(ctx, sess, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// play reads card indices from in, one per line, and prints the board to out
// whenever it changes. It returns when the game is won, in is exhausted or
// the player types q.
func play(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	text := render.NewText(out)
	quit := make(chan struct{})
	defer close(quit)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-quit:
				return
			}
		}
	}()

	// Frames only signal that time has passed; the board is re-read so a
	// frame rendered before the last reveal is never printed.
	ticks, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	var last render.Frame
	show := func(v session.View) error {
		if v.Frame.Message == last.Message && slices.Equal(v.Frame.Sprites, last.Sprites) {
			return nil
		}
		last = v.Frame
		return text.Print(v.Frame)
	}

	v, err := sess.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := show(v); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sess.Done():
			return nil
		case <-ticks:
			v, err := sess.Snapshot(ctx)
			if err != nil {
				return err
			}
			if err := show(v); err != nil {
				return err
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "q" {
				return nil
			}
			idx, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintf(out, "not a card number: %q\n", line)
				continue
			}
			v, err := sess.Reveal(ctx, idx)
			if errors.Is(err, game.ErrInvalidArgument) {
				fmt.Fprintf(out, "can't reveal %d: %v\n", idx, err)
				continue
			}
			if err != nil {
				return err
			}
			if err := show(v); err != nil {
				return err
			}
			if v.Won {
				fmt.Fprintf(out, "Solved in %d moves.\n", v.Moves)
				return nil
			}
		}
	}
}
