package migration

import (
	"sort"
	"time"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/model"
	"github.com/iov-one/pkconv/node"
	"github.com/tendermint/tendermint/libs/log"
)

// Pipeline is an ordered set of migration steps. It is safe for concurrent
// use once created.
type Pipeline struct {
	steps   map[pkconv.Version]Step
	ordered []Step
	logger  log.Logger
	metrics *Metrics
}

// Option configures a pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used to report executed steps.
func WithLogger(l log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l.With("module", "migration")
	}
}

// WithMetrics sets the collector of step execution metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline returns a pipeline executing given steps. Each step must
// increase the version and no two steps can accept the same version.
func NewPipeline(steps []Step, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		steps:  make(map[pkconv.Version]Step, len(steps)),
		logger: log.NewNopLogger(),
	}
	for _, s := range steps {
		if s.To <= s.From {
			return nil, errors.Wrapf(errors.ErrMigrationCycle, "step %s: %s -> %s", s, s.From, s.To)
		}
		if other, ok := p.steps[s.From]; ok {
			return nil, errors.Wrapf(errors.ErrDuplicateStepVersion, "steps %s and %s accept %s", other, s, s.From)
		}
		p.steps[s.From] = s
		p.ordered = append(p.ordered, s)
	}
	sort.Slice(p.ordered, func(i, j int) bool { return p.ordered[i].From < p.ordered[j].From })
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// MustNewPipeline is NewPipeline that panics on error. Use it for pipelines
// declared in code.
func MustNewPipeline(steps []Step, opts ...Option) *Pipeline {
	p, err := NewPipeline(steps, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Current returns the newest version any registered step produces. For an
// empty pipeline zero is returned.
func (p *Pipeline) Current() pkconv.Version {
	var v pkconv.Version
	for _, s := range p.ordered {
		if s.To > v {
			v = s.To
		}
	}
	return v
}

// Steps returns all registered steps ordered by their source version.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.ordered...)
}

// Plan returns the steps that migrating a document of the given version
// executes, in order.
func (p *Pipeline) Plan(v pkconv.Version) []Step {
	var plan []Step
	for i := 0; i < len(p.steps); i++ {
		s, ok := p.steps[v]
		if !ok {
			return plan
		}
		plan = append(plan, s)
		v = s.To
	}
	return plan
}

// ConvertStructural applies the structural transform of every step in
// sequence, starting with the step accepting version v. The version the tree
// conforms to afterwards is returned.
//
// On failure the tree must be discarded. Some steps might have been applied.
func (p *Pipeline) ConvertStructural(root *node.Node, v pkconv.Version) (pkconv.Version, error) {
	if root == nil {
		return v, errors.Wrap(errors.ErrEmpty, "nil document")
	}
	return p.run(PassStructural, v, func(s Step) error {
		if s.Structural == nil {
			return nil
		}
		return s.Structural(root)
	})
}

// ConvertGraph applies the typed transform of every step in sequence,
// starting with the step accepting version v. The version the building block
// conforms to afterwards is returned.
//
// On failure the building block must be discarded. Some steps might have
// been applied.
func (p *Pipeline) ConvertGraph(obj model.BuildingBlock, v pkconv.Version) (pkconv.Version, error) {
	if obj == nil {
		return v, errors.Wrap(errors.ErrEmpty, "nil building block")
	}
	return p.run(PassTyped, v, func(s Step) error {
		if s.Typed == nil {
			return nil
		}
		return s.Typed(obj)
	})
}

func (p *Pipeline) run(pass Pass, v pkconv.Version, apply func(Step) error) (pkconv.Version, error) {
	// Steps always increase the version, so each can run at most once.
	bound := len(p.steps)
	for i := 0; ; i++ {
		s, ok := p.steps[v]
		if !ok {
			return v, nil
		}
		if i >= bound {
			return v, errors.Wrapf(errors.ErrMigrationCycle, "%s pass exceeded %d steps at %s", pass, bound, v)
		}

		start := time.Now()
		err := safeApply(apply, s)
		p.metrics.observe(pass, s, time.Since(start), err)
		if err != nil {
			return v, errors.Wrapf(err, "%s pass, step %s (%s -> %s)", pass, s, s.From, s.To)
		}
		p.logger.Debug("migration step applied",
			"pass", string(pass),
			"step", s.String(),
			"from", s.From.String(),
			"to", s.To.String())
		v = s.To
	}
}

// safeApply converts a panic of a step transform into an ErrPanic error.
func safeApply(apply func(Step) error, s Step) (err error) {
	defer errors.Recover(&err)
	return apply(s)
}
