package cmd

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quadglow/quadglow/config"
	"github.com/quadglow/quadglow/internal/controller"
	"github.com/quadglow/quadglow/internal/daemon"
	"github.com/quadglow/quadglow/internal/rgb"
	"github.com/quadglow/quadglow/internal/shutdown"
	"github.com/quadglow/quadglow/internal/usb"
)

var errBrightnessRange = errors.New("brightness must be between 0 and 100")

type RunOptions struct {
	Mode       string
	Color      string
	Brightness int
	Background bool
	Verbose    bool
}

func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Connect to the microphone and stream the chosen lighting",
		Long: `Connect to the first compatible microphone and stream the chosen
lighting mode until interrupted. If the device disappears mid-stream the
controller reconnects on its own; only SIGINT/SIGTERM (or a fatal failure
before the first connection) ends the process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(opts)
		},
		Example: `  # Solid red at full brightness
  quadglow run

  # Cycle through the hue wheel in the background
  quadglow run --mode cycle --background

  # Dimmed solid color by hex value
  quadglow run --color 00ccff --brightness 40`,
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Mode, "mode", "m", config.GetDefaultMode(),
		"Lighting mode: "+strings.Join(rgb.Modes(), ", "))
	flags.StringVarP(&opts.Color, "color", "c", config.GetDefaultColor(),
		"Color name or RRGGBB hex (ignored by cycle/wave)")
	flags.IntVarP(&opts.Brightness, "brightness", "b", config.GetDefaultBrightness(),
		"Brightness percentage, 0-100")
	flags.BoolVar(&opts.Background, "background", config.GetBackgroundDefault(),
		"Detach from the terminal and keep running")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func executeRun(opts *RunOptions) error {
	log := setupLogger(opts.Verbose)

	mode, err := rgb.ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	color, err := rgb.ParseColor(opts.Color)
	if err != nil {
		return err
	}
	if opts.Brightness < 0 || opts.Brightness > 100 {
		return errBrightnessRange
	}
	seq, err := rgb.Encode(mode, color, uint8(opts.Brightness))
	if err != nil {
		return err
	}

	if opts.Background {
		if !daemon.IsChild() {
			// Prove the first connection works while still attached to the
			// terminal, so a failure keeps its specific exit code instead of
			// vanishing into the detached child's log.
			backend, err := usb.NewBackend()
			if err != nil {
				return err
			}
			err = preflightConnect(&usb.Connector{Backend: backend, Log: log})
			backend.Close()
			if err != nil {
				return err
			}
		}
		pid, err := daemon.Detach(config.GetLogFile(), config.GetPIDFile())
		if err != nil {
			return err
		}
		if pid != 0 {
			// Parent: the child carries on.
			daemon.Announce(os.Stdout, opts.Verbose, pid)
			os.Exit(0)
		}
		defer daemon.RemovePIDFile(config.GetPIDFile())
	}

	backend, err := usb.NewBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	flag := shutdown.NewFlag()
	shutdown.Notify(flag)

	sup := &controller.Supervisor{
		Source: &usb.Connector{Backend: backend, Log: log},
		Flag:   flag,
		Log:    log,
	}
	log.WithFields(logrus.Fields{"mode": mode, "frames": len(seq) / rgb.FrameStride}).Info("starting")
	return sup.Run(seq)
}

// preflightConnect opens and immediately releases a session. The detached
// child establishes its own session afterwards.
func preflightConnect(src controller.SessionSource) error {
	sess, err := src.Connect()
	if err != nil {
		return err
	}
	sess.Close()
	return nil
}

func setupLogger(verbose bool) *logrus.Entry {
	level, err := logrus.ParseLevel(config.GetLogLevel())
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logrus.WithField("component", "quadglow")
}
