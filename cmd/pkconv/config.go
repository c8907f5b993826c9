package main

import (
	"io"
	"runtime"

	"github.com/iov-one/pkconv/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Config is the command line tool configuration. Every value can be set in
// the configuration file, with an environment variable prefixed with PKCONV_
// or with a flag.
type Config struct {
	LogLevel string `mapstructure:"log-level"`
	// Catalog is the path of a lookup table catalog. The built-in catalog is
	// used when empty.
	Catalog string `mapstructure:"catalog"`
	Strict  bool   `mapstructure:"strict"`
	Workers int    `mapstructure:"workers"`
}

func defaultWorkers() int {
	return runtime.NumCPU()
}

func (c *Config) Validate() error {
	var errs error
	if _, err := log.AllowLevel(c.LogLevel); err != nil {
		errs = errors.AppendField(errs, "LogLevel", errors.Wrap(errors.ErrInput, err.Error()))
	}
	if c.Workers < 1 {
		errs = errors.AppendField(errs, "Workers", errors.Wrap(errors.ErrInput, "must be at least 1"))
	}
	return errs
}

// Logger returns a logger writing to w and filtered by the configured
// level.
func (c *Config) Logger(w io.Writer) (log.Logger, error) {
	opt, err := log.AllowLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	return log.NewFilter(logger, opt).With("module", "pkconv"), nil
}
