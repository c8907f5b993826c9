package gconf

import (
	stderrors "errors"
	"io/fs"
	"strings"

	"github.com/iov-one/pkconv/errors"
	"github.com/spf13/viper"
)

// Configuration is implemented by a configuration struct that can check its
// own values.
type Configuration interface {
	Validate() error
}

// NewViper returns a viper instance that reads environment variables with
// the given prefix. Dashes and dots of a key are replaced with underscores,
// so that the key log-level of prefix PKCONV is read from PKCONV_LOG_LEVEL.
func NewViper(envPrefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads the configuration file under given path. The format is
// derived from the file extension.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(errors.ErrNotFound, "config file %q", path)
		}
		return errors.Wrapf(errors.ErrInput, "config file %q: %s", path, err)
	}
	return nil
}

// Load decodes the configuration section found under given key into dst
// and validates it. An empty key decodes the whole configuration.
func Load(v *viper.Viper, key string, dst Configuration) error {
	src := v
	if key != "" {
		if !v.IsSet(key) {
			return errors.Wrapf(errors.ErrNotFound, "key %q", key)
		}
		if src = v.Sub(key); src == nil {
			return errors.Wrapf(errors.ErrInput, "key %q is not a section", key)
		}
	}
	if err := src.Unmarshal(dst); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal: key %q: %s", key, err)
	}
	if err := dst.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	return nil
}
