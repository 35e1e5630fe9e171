package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sumofix/internal/config"
	"sumofix/internal/logging"
	"sumofix/internal/pipeline"
)

func newFixCommand(ctx *commandContext) *cobra.Command {
	var batch bool
	var output string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "fix [archive|directory]",
		Short: "Repair one archive or every archive in a directory",
		Long: "Repair a .sumo archive, writing <name>_fixed.sumo beside it, or every\n" +
			"archive directly inside a directory into its fixed/ subdirectory.\n" +
			"Without an argument the path is read from the terminal.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if batch && output != "" {
				return errors.New("--output cannot be combined with --batch")
			}

			runID := uuid.NewString()
			logger, err := logging.NewFromConfig(cfg, runID)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			opts := []pipeline.Option{pipeline.WithRunID(runID)}
			if !noHistory {
				store, err := ctx.openHistory()
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
					opts = append(opts, pipeline.WithLedger(store))
				}
			}

			repairer, err := pipeline.New(cfg, logger, opts...)
			if err != nil {
				return err
			}

			chooser := newChooser(args, batch, output, cmd.InOrStdin(), cmd.OutOrStdout())
			return repairer.Run(cmd.Context(), chooser, writerReporter{out: cmd.OutOrStdout()})
		},
	}

	cmd.Flags().BoolVarP(&batch, "batch", "b", false, "Treat the path as a directory of archives")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path for a single archive")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history ledger")
	return cmd
}

func newChooser(args []string, batch bool, output string, in io.Reader, out io.Writer) pipeline.InputChooser {
	mode := pipeline.Mode("")
	if batch {
		mode = pipeline.ModeBatch
	}
	if len(args) > 0 {
		return argChooser{selection: pipeline.Selection{Path: args[0], Mode: mode, Output: output}}
	}
	return &promptChooser{in: in, out: out, mode: mode, output: output, interactive: isTerminal(in)}
}

type argChooser struct {
	selection pipeline.Selection
}

func (c argChooser) ChooseInput(context.Context) (pipeline.Selection, error) {
	path, err := config.ExpandPath(strings.TrimSpace(c.selection.Path))
	if err != nil {
		return pipeline.Selection{}, err
	}
	sel := c.selection
	sel.Path = path
	return sel, nil
}

// promptChooser asks for a path on the terminal. Anything else, or an empty
// answer, counts as cancelling.
type promptChooser struct {
	in          io.Reader
	out         io.Writer
	mode        pipeline.Mode
	output      string
	interactive bool
}

func (c *promptChooser) ChooseInput(ctx context.Context) (pipeline.Selection, error) {
	if !c.interactive {
		return pipeline.Selection{}, nil
	}
	prompt := "Archive to repair (empty to cancel): "
	if c.mode == pipeline.ModeBatch {
		prompt = "Directory of archives to repair (empty to cancel): "
	}
	fmt.Fprint(c.out, prompt)

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(c.in).ReadString('\n')
		answer <- strings.TrimSpace(line)
	}()

	var line string
	select {
	case <-ctx.Done():
		return pipeline.Selection{}, ctx.Err()
	case line = <-answer:
	}
	if line == "" {
		return pipeline.Selection{}, nil
	}
	path, err := config.ExpandPath(line)
	if err != nil {
		return pipeline.Selection{}, err
	}
	return pipeline.Selection{Path: path, Mode: c.mode, Output: c.output}, nil
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type writerReporter struct {
	out io.Writer
}

func (r writerReporter) Report(message string) {
	fmt.Fprintln(r.out, message)
}
