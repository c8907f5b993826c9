package conversion

import (
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/migration"
)

// Steps returns all project migration steps in version order.
func Steps(deps Dependencies) ([]migration.Step, error) {
	if err := deps.Validate(); err != nil {
		return nil, errors.Wrap(err, "dependencies")
	}
	return []migration.Step{
		step700To710(),
		newConverter710To720(deps).step(),
	}, nil
}

// NewPipeline returns a pipeline migrating project documents to the current
// schema version.
func NewPipeline(deps Dependencies, opts ...migration.Option) (*migration.Pipeline, error) {
	steps, err := Steps(deps)
	if err != nil {
		return nil, err
	}
	return migration.NewPipeline(steps, opts...)
}
