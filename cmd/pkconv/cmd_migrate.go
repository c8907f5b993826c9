package main

import (
	"bytes"
	"io"
	"os"

	"github.com/iov-one/pkconv/errors"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "migrate <document>",
		Short: "Migrate a single document to the current version",
		Long: `Migrate a single document to the current version. Use - to read the
document from stdin. The migrated document is written to stdout unless an
output file is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			var out bytes.Buffer
			res, err := a.loader.Migrate(in, &out)
			if err != nil {
				return errors.Wrapf(err, "document %q", args[0])
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(out.Bytes())
				return err
			}
			if err := os.WriteFile(output, out.Bytes(), 0o644); err != nil {
				return errors.Wrapf(errors.ErrInput, "cannot write %q: %s", output, err)
			}
			a.logger.Info("document written",
				"file", output,
				"from", res.From.String(),
				"to", res.To.String(),
				"digest", res.Digest.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the migrated document to this file instead of stdout")
	return cmd
}

// openInput returns the content of the named file or stdin for -.
func openInput(cmd *cobra.Command, name string) (io.Reader, func(), error) {
	if name == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	fd, err := os.Open(name)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "cannot open %q: %s", name, err)
	}
	return fd, func() { fd.Close() }, nil
}
