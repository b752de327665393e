package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cansyan/machview/logger"
	"github.com/cansyan/machview/machine"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
)

const noImagesHint = `No images are registered with systemd-machined.
Import one with "machinectl pull-tar", "machinectl import-tar" or by placing
it under /var/lib/machines, then run machview again.`

// exitError carries the exit status of the shell command.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("shell exited with status %d", e.code) }

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	os.Exit(exitCode(os.Stderr, err))
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machview",
		Short: "Terminal dashboard for systemd-machined images",
		Long: `machview lists the container and VM images known to systemd-machined,
marks the running ones and lets you start, stop, reboot or open a shell in them.

Keys: Up/Down move, Enter starts or powers off, r reboots, s opens a shell,
y copies the name, F5 refreshes, q or Esc quits.`,
		Args:          cobra.NoArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	log, closer, err := logger.Init(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	src, err := machine.NewMachined()
	if err != nil {
		log.Error("connect to system bus", "err", err)
		return err
	}
	defer src.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}

	app := NewApp(screen, src, cfg)
	app.Log = log
	app.Clipboard = newSystemClipboard(log)

	ctx := cmd.Context()
	if err := app.Run(ctx); err != nil {
		log.Error("dashboard stopped", "err", err)
		return err
	}

	name := app.ShellTarget()
	if name == "" {
		return nil
	}
	log.Info("opening shell", "image", name, "command", cfg.Shell)
	code, err := runShell(ctx, cfg.Shell, name)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// exitCode reports err on w, the terminal having been restored already,
// and returns the process exit status.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(w, "machview: %v\n", err)
	if errors.Is(err, ErrNoImages) {
		fmt.Fprintln(w, noImagesHint)
	}
	return 1
}
