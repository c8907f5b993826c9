package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/project"
	"github.com/iov-one/pkconv/store"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	var metrics bool
	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Migrate all documents of a directory",
		Long: `Migrate all *.xml documents of a directory in place. Documents are
migrated concurrently. Files are written only if every document of the
directory was migrated successfully. Migrated documents are first written to
temporary files that replace the originals once all of them were written.
Documents that are current or newer than supported are not rewritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			paths, err := filepath.Glob(filepath.Join(dir, "*.xml"))
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "directory %q: %s", dir, err)
			}
			if len(paths) == 0 {
				return errors.Wrapf(errors.ErrNotFound, "no documents in %q", dir)
			}

			ws := project.NewWorkspace(store.NewMemStore())
			for _, p := range paths {
				raw, err := os.ReadFile(p)
				if err != nil {
					return errors.Wrapf(errors.ErrInput, "cannot read %q: %s", p, err)
				}
				if err := ws.Put(filepath.Base(p), raw); err != nil {
					return err
				}
			}

			report, err := ws.MigrateAll(cmd.Context(), a.loader, a.cfg.Workers)
			printReport(cmd, report, a.pipeline.Current())
			if metrics {
				if err := printMetrics(cmd, a); err != nil {
					return err
				}
			}
			if err != nil {
				return err
			}

			var files []file
			for _, r := range report.Results {
				if !r.Changed {
					continue
				}
				raw, err := ws.Get(r.Document)
				if err != nil {
					return err
				}
				files = append(files, file{name: r.Document, raw: raw})
			}
			if err := writeFiles(dir, files); err != nil {
				return err
			}
			a.logger.Info("batch finished",
				"documents", len(report.Results),
				"migrated", report.Migrated())
			return nil
		},
	}
	cmd.Flags().Int("workers", defaultWorkers(), "number of documents migrated concurrently")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print migration step metrics after the run")
	if err := a.v.BindPFlag("workers", cmd.Flags().Lookup("workers")); err != nil {
		panic(err)
	}
	return cmd
}

// file is a document to be written to a directory.
type file struct {
	name string
	raw  []byte
}

// writeFiles replaces the files of a directory. All content is written to
// temporary files first, so that a failed write leaves every original file
// untouched.
func writeFiles(dir string, files []file) error {
	tmp := make([]string, 0, len(files))
	cleanup := func() {
		for _, path := range tmp {
			os.Remove(path)
		}
	}
	for _, f := range files {
		path, err := writeTemp(filepath.Join(dir, f.name), f.raw)
		if err != nil {
			cleanup()
			return errors.Wrapf(errors.ErrInput, "cannot write %q: %s", f.name, err)
		}
		tmp = append(tmp, path)
	}
	for i, f := range files {
		if err := os.Rename(tmp[i], filepath.Join(dir, f.name)); err != nil {
			cleanup()
			return errors.Wrapf(errors.ErrInput, "cannot replace %q: %s", f.name, err)
		}
	}
	return nil
}

func writeTemp(target string, raw []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func printReport(cmd *cobra.Command, report project.Report, current pkconv.Version) {
	out := cmd.OutOrStdout()
	for _, r := range report.Results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "%s\tfailed\t%s\n", r.Document, r.Err)
		case r.From > current:
			fmt.Fprintf(out, "%s\tnewer\t%s\n", r.Document, r.From)
		case r.From == r.To:
			fmt.Fprintf(out, "%s\tcurrent\t%s\n", r.Document, r.To)
		default:
			fmt.Fprintf(out, "%s\tmigrated\t%s -> %s\n", r.Document, r.From, r.To)
		}
	}
}

func printMetrics(cmd *cobra.Command, a *app) error {
	families, err := a.registry.Gather()
	if err != nil {
		return errors.Wrap(errors.ErrState, err.Error())
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
