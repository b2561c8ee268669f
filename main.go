package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/massung/chip-8/chip8"
	"github.com/massung/chip-8/internal/config"
	"github.com/massung/chip-8/internal/runner"
	"github.com/massung/chip-8/internal/stats"
	"github.com/massung/chip-8/internal/term"
	"github.com/massung/chip-8/internal/wavout"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	ctx := app.Context()

	opts, err := config.ParseFlags(os.Args[1:])
	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if err != nil {
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "%v\n\n", err)
			usageErr.ShowUsage(os.Stderr)
		} else {
			logger.Error("Invalid options", log.Err(err))
		}
		os.Exit(1)
	}

	if err := run(ctx, logger, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts config.Options) (rerr error) {
	// the terminal has no dialogs, so the ROM must be given
	if opts.ROM == "" {
		if opts.Terminal {
			return errors.New("a ROM file is required when running in the terminal")
		}

		file, err := dialog.File().Filter("CHIP-8 ROM", "ch8", "c8").Title("Load ROM").Load()
		if err != nil {
			if errors.Is(err, dialog.ErrCancelled) {
				logger.Info("No ROM selected")
				return nil
			}
			return fmt.Errorf("selecting ROM: %w", err)
		}
		opts.ROM = file
	}

	program, err := config.ReadROM(opts.ROM)
	if err != nil {
		return err
	}

	vm, err := chip8.LoadROM(logger, opts.Quirks, program)
	if err != nil {
		return fmt.Errorf("loading ROM '%s': %w", opts.ROM, err)
	}

	logger.Info("Loaded ROM",
		log.String("file", opts.ROM),
		log.Int("size", len(program)),
		log.String("sprites", opts.Quirks.Sprites.String()))

	if opts.Stats != "" {
		stop := stats.Launch(logger, opts.Stats)
		defer stop()
	}

	var sinks []runner.Sink

	if opts.Wav != "" {
		rec := wavout.New(logger, opts.Wav)
		defer func() {
			if err := rec.Close(); err != nil && rerr == nil {
				rerr = err
			}
		}()
		sinks = append(sinks, rec)
	}

	if opts.Terminal {
		return runTerminal(ctx, logger, vm, opts, sinks)
	}
	return runWindow(ctx, logger, vm, opts, sinks)
}

func runTerminal(ctx context.Context, logger *log.Logger, vm *chip8.VM, opts config.Options, sinks []runner.Sink) error {
	f, err := term.Open(logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	sinks = append(sinks, f)

	return runner.New(logger, vm, f, opts.Speed, sinks...).Run(ctx)
}

func runWindow(ctx context.Context, logger *log.Logger, vm *chip8.VM, opts config.Options, sinks []runner.Sink) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("initializing SDL: %w", err)
	}
	defer sdl.Quit()

	screen, err := NewScreen("CHIP-8 - "+filepath.Base(opts.ROM), opts.Scale)
	if err != nil {
		return err
	}
	defer screen.Destroy()

	// run silently when there is no audio device
	if aud, err := OpenAudio(); err != nil {
		logger.Warn("Audio unavailable", log.Err(err))
	} else {
		defer aud.Close()
		sinks = append(sinks, aud)
	}

	return runner.New(logger, vm, screen, opts.Speed, sinks...).Run(ctx)
}
