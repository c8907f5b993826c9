package conversion

import (
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/model"
	"github.com/iov-one/pkconv/repository"
	"github.com/tendermint/tendermint/libs/log"
)

// OrganTypeRepository resolves legacy organ labels to canonical organ types.
type OrganTypeRepository interface {
	OrganTypeFor(label string) (string, error)
}

// DefaultIndividualRetriever provides the read only default human template.
type DefaultIndividualRetriever interface {
	DefaultHuman() *model.Individual
}

// Cloner creates deep copies of model elements.
type Cloner interface {
	Clone(model.Cloneable) model.Cloneable
}

// EntityPathResolver computes the path identifying a parameter within its
// individual.
type EntityPathResolver interface {
	PathFor(*model.Parameter) string
}

// CalculationMethodRepository is the calculation method catalog.
type CalculationMethodRepository interface {
	FindByName(name string) (model.CalculationMethod, error)
}

var (
	_ OrganTypeRepository         = (*repository.OrganTypeRepository)(nil)
	_ DefaultIndividualRetriever  = (*repository.DefaultIndividualRetriever)(nil)
	_ CalculationMethodRepository = (*repository.CalculationMethodRepository)(nil)
	_ Cloner                      = model.Cloner{}
	_ EntityPathResolver          = model.PathResolver{}
)

// Dependencies are the collaborators used by migration rules. All of them
// must be safe for concurrent use as documents can be migrated in parallel.
type Dependencies struct {
	OrganTypes         OrganTypeRepository
	Individuals        DefaultIndividualRetriever
	Cloner             Cloner
	Paths              EntityPathResolver
	CalculationMethods CalculationMethodRepository
	// Logger is optional.
	Logger log.Logger
}

// NewDependencies returns dependencies using given repositories and the
// default cloning and path services.
func NewDependencies(r *repository.Repositories, logger log.Logger) Dependencies {
	return Dependencies{
		OrganTypes:         r.OrganTypes,
		Individuals:        r.Individuals,
		Cloner:             model.NewCloner(),
		Paths:              model.PathResolver{},
		CalculationMethods: r.CalculationMethods,
		Logger:             logger,
	}
}

func (d Dependencies) Validate() error {
	var errs error
	if d.OrganTypes == nil {
		errs = errors.AppendField(errs, "OrganTypes", errors.ErrEmpty)
	}
	if d.Individuals == nil {
		errs = errors.AppendField(errs, "Individuals", errors.ErrEmpty)
	}
	if d.Cloner == nil {
		errs = errors.AppendField(errs, "Cloner", errors.ErrEmpty)
	}
	if d.Paths == nil {
		errs = errors.AppendField(errs, "Paths", errors.ErrEmpty)
	}
	if d.CalculationMethods == nil {
		errs = errors.AppendField(errs, "CalculationMethods", errors.ErrEmpty)
	}
	return errs
}

func (d Dependencies) logger() log.Logger {
	if d.Logger == nil {
		return log.NewNopLogger()
	}
	return d.Logger.With("module", "conversion")
}
