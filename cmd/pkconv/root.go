package main

import (
	"io"

	"github.com/iov-one/pkconv/conversion"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/gconf"
	"github.com/iov-one/pkconv/migration"
	"github.com/iov-one/pkconv/project"
	"github.com/iov-one/pkconv/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const envPrefix = "PKCONV"

// app is the state shared by all commands. It is initialized before any
// command runs.
type app struct {
	v          *viper.Viper
	configFile string
	stderr     io.Writer

	cfg      Config
	logger   log.Logger
	registry *prometheus.Registry
	pipeline *migration.Pipeline
	loader   *project.Loader
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:        gconf.NewViper(envPrefix),
		stderr:   stderr,
		registry: prometheus.NewRegistry(),
	}

	root := &cobra.Command{
		Use:   "pkconv",
		Short: "Migrate physiology simulation project documents",
		Long: `pkconv reads project documents written by any supported version and
converts them to the current schema version.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (yaml, json or toml)")
	flags.String("catalog", "", "lookup table catalog file, the built-in catalog is used when empty")
	flags.String("log-level", "info", "log level: debug, info, error or none")
	flags.Bool("strict", false, "reject documents newer than the current version")
	for _, name := range []string{"catalog", "log-level", "strict"} {
		if err := a.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	a.v.SetDefault("workers", defaultWorkers())

	root.AddCommand(
		newMigrateCmd(a),
		newInspectCmd(a),
		newBatchCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup() error {
	if a.configFile != "" {
		if err := gconf.ReadFile(a.v, a.configFile); err != nil {
			return err
		}
	}
	if err := gconf.Load(a.v, "", &a.cfg); err != nil {
		return errors.Wrap(err, "configuration")
	}
	logger, err := a.cfg.Logger(a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger

	catalog := repository.DefaultCatalog()
	if a.cfg.Catalog != "" {
		if catalog, err = repository.LoadCatalog(a.cfg.Catalog); err != nil {
			return err
		}
	}
	repos, err := repository.New(catalog)
	if err != nil {
		return errors.Wrap(err, "repositories")
	}

	a.pipeline, err = conversion.NewPipeline(
		conversion.NewDependencies(repos, a.logger),
		migration.WithLogger(a.logger),
		migration.WithMetrics(migration.NewMetrics(a.registry)),
	)
	if err != nil {
		return errors.Wrap(err, "pipeline")
	}
	a.loader = project.NewLoader(a.pipeline,
		project.Strict(a.cfg.Strict),
		project.WithLogger(a.logger),
	)
	return nil
}
