package main

import (
	"fmt"

	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/node"
	"github.com/iov-one/pkconv/project"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <document>",
		Short: "Print the version of a document and the steps migrating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			root, err := node.Decode(in)
			if err != nil {
				return errors.Wrapf(err, "document %q", args[0])
			}
			v, err := project.StoredVersion(root)
			if err != nil {
				return errors.Wrapf(err, "document %q", args[0])
			}
			name, _ := root.Attr(project.AttrName)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "project:  %s\n", name)
			fmt.Fprintf(out, "version:  %s\n", v)
			fmt.Fprintf(out, "current:  %s\n", a.pipeline.Current())
			fmt.Fprintf(out, "digest:   %s\n", node.Fingerprint(root))

			plan := a.pipeline.Plan(v)
			if len(plan) == 0 {
				fmt.Fprintln(out, "steps:    none")
				return nil
			}
			fmt.Fprintln(out, "steps:")
			for _, s := range plan {
				fmt.Fprintf(out, "  %s\n", s)
			}
			return nil
		},
	}
}
