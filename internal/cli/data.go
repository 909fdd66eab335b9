package cli

import (
	"bytes"
	stderrors "errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardspace/pkg/dataset"
	"github.com/matzehuels/cardspace/pkg/errors"
)

// =============================================================================
// Import / Export
// =============================================================================

func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace the stored dataset with a JSON file",
		Long: `Import reads a card dataset (a JSON object keyed by card id) and
writes it to every configured persistence backend, replacing what was there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeNotFound, err, "read %s", args[0])
			}

			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			prog := newProgress(logger)
			if err := ws.store.Import(data); err != nil {
				return err
			}
			var wrote bool
			if err := spin(ctx, "Saving to "+ws.saver.Backend().Name(), func() error {
				var serr error
				wrote, serr = ws.save(ctx)
				return serr
			}); err != nil {
				return err
			}
			prog.done("Import finished")

			if !wrote {
				printInfo("Dataset unchanged (%d cards)", ws.store.Len())
				return nil
			}
			printSuccess("Imported %d cards", ws.store.Len())
			printKeyValue("Backend", ws.saver.Backend().Name())
			printKeyValue("Key", ws.saver.Key())
			return nil
		},
	}
}

func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored dataset as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			data, err := ws.store.Export()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := out.Write(append(data, '\n'))
				return err
			}
			if err := errors.ValidateFilePath(output); err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
			}
			printSuccess("Exported %d cards from %s", ws.store.Len(), ws.source)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// =============================================================================
// Spreadsheet conversion
// =============================================================================

func (c *CLI) importCSVCommand() *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "import-csv <in.csv> <out.json>",
		Short: "Convert the candidate spreadsheet into a card dataset",
		Long: `Import-csv validates the candidate spreadsheet and writes the card
dataset it describes, including the district hierarchy. Every problem in the
file is reported before failing; nothing is written unless the file is valid.

With --load the converted dataset is also saved to the persistence backends.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			in, dst := args[0], args[1]
			if err := errors.ValidateFilePath(dst); err != nil {
				return err
			}

			f, err := os.Open(in)
			if err != nil {
				return errors.Wrap(errors.ErrCodeNotFound, err, "open %s", in)
			}
			defer f.Close()

			prog := newProgress(logger)
			var buf bytes.Buffer
			store, err := dataset.Convert(f, &buf, logger)
			if err != nil {
				var verr *dataset.ValidationError
				if stderrors.As(err, &verr) {
					printError("%s has %d problem(s)", in, len(verr.Problems))
					for _, p := range verr.Problems {
						printDetail("%s", p)
					}
				}
				return err
			}
			if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", dst)
			}
			prog.done("Conversion finished")
			printSuccess("Converted %d cards", store.Len())
			printFile(dst)

			if !load {
				printNextStep("Load it with", "cardspace import "+dst)
				return nil
			}
			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()
			if err := ws.store.Import(buf.Bytes()); err != nil {
				return err
			}
			if _, err := ws.save(ctx); err != nil {
				return err
			}
			printSuccess("Saved to %s", ws.saver.Backend().Name())
			return nil
		},
	}

	cmd.Flags().BoolVar(&load, "load", false, "also save the dataset to the persistence backends")
	return cmd
}
