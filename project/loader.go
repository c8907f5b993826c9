package project

import (
	"io"
	"strconv"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/migration"
	"github.com/iov-one/pkconv/model"
	"github.com/iov-one/pkconv/node"
	"github.com/tendermint/tendermint/libs/log"
)

// Loader reads project documents of any supported version and returns them
// migrated to the newest version the pipeline knows.
type Loader struct {
	pipeline *migration.Pipeline
	strict   bool
	logger   log.Logger
}

// LoaderOption configures a loader.
type LoaderOption func(*Loader)

// Strict makes the loader reject documents stamped with a version newer than
// the pipeline produces. By default such documents are loaded unchanged.
func Strict(strict bool) LoaderOption {
	return func(l *Loader) {
		l.strict = strict
	}
}

// WithLogger sets the loader logger.
func WithLogger(logger log.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger.With("module", "project")
	}
}

// NewLoader returns a loader migrating documents with the given pipeline.
func NewLoader(p *migration.Pipeline, opts ...LoaderOption) *Loader {
	l := &Loader{
		pipeline: p,
		logger:   log.NewNopLogger(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load decodes a project document and migrates it.
func (l *Loader) Load(r io.Reader) (*model.Project, error) {
	root, err := node.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	return l.LoadNode(root)
}

// LoadNode migrates a decoded project document. The tree is modified in
// place and must not be used after a failure. Errors carry the project name.
//
// Both passes start from the version stamped on the document. The structural
// pass runs first, so that the typed pass always sees a tree of the current
// layout. Every building block must end on the same version as the tree.
func (l *Loader) LoadNode(root *node.Node) (*model.Project, error) {
	if root == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "document")
	}
	p, err := l.load(root)
	if err != nil {
		return nil, errors.Wrapf(err, "project %q", projectName(root))
	}
	return p, nil
}

func (l *Loader) load(root *node.Node) (*model.Project, error) {
	if root.Name != ElemProject {
		return nil, errors.Field(root.Name, errors.ErrInput, "not a project document")
	}
	stored, err := StoredVersion(root)
	if err != nil {
		return nil, err
	}
	if _, err := l.passThrough(root, stored); err != nil {
		return nil, err
	}

	target, err := l.pipeline.ConvertStructural(root, stored)
	if err != nil {
		return nil, err
	}
	p, err := Decode(root)
	if err != nil {
		return nil, errors.Wrap(err, "decode project")
	}

	var errs error
	for i, bb := range p.BuildingBlocks {
		field := "BuildingBlocks." + strconv.Itoa(i)
		v, err := l.pipeline.ConvertGraph(bb, stored)
		if err != nil {
			errs = errors.AppendField(errs, field, err)
			continue
		}
		if v != target {
			errs = errors.AppendField(errs, field,
				errors.Wrapf(errors.ErrState, "typed pass ended at %s, structural pass at %s", v, target))
		}
	}
	if errs != nil {
		return nil, errs
	}

	p.Version = target
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "migrated project")
	}
	if target != stored {
		l.logger.Info("project migrated", "project", p.Name, "from", stored.String(), "to", target.String())
	}
	return p, nil
}

// passThrough returns true if the document is newer than the pipeline
// produces and must be left untouched. In strict mode such a document is an
// error.
func (l *Loader) passThrough(root *node.Node, stored pkconv.Version) (bool, error) {
	current := l.pipeline.Current()
	if stored <= current {
		return false, nil
	}
	if l.strict {
		return false, errors.Wrapf(errors.ErrSchema, "document version %s is newer than %s", stored, current)
	}
	l.logger.Info("document version is newer than supported, leaving unchanged",
		"project", projectName(root), "version", stored.String(), "current", current.String())
	return true, nil
}

func projectName(root *node.Node) string {
	name, _ := root.Attr(AttrName)
	return name
}

// Save writes the project document.
func (l *Loader) Save(w io.Writer, p *model.Project) error {
	root, err := Encode(p)
	if err != nil {
		return err
	}
	return node.Encode(w, root)
}

// Result describes a single migrated document.
type Result struct {
	Name string
	From pkconv.Version
	To   pkconv.Version
	// Digest is the fingerprint of the written document.
	Digest node.Digest
}

// Migrate loads a document from r and writes its migrated form to w. A
// document newer than the pipeline produces is written back as read.
func (l *Loader) Migrate(r io.Reader, w io.Writer) (Result, error) {
	root, err := node.Decode(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "decode document")
	}
	from, err := StoredVersion(root)
	if err != nil {
		return Result{}, errors.Wrapf(err, "project %q", projectName(root))
	}
	res := Result{Name: projectName(root), From: from, To: from}

	out := root
	skip, err := l.passThrough(root, from)
	if err != nil {
		return Result{}, errors.Wrapf(err, "project %q", res.Name)
	}
	if !skip {
		p, err := l.LoadNode(root)
		if err != nil {
			return Result{}, err
		}
		if out, err = Encode(p); err != nil {
			return Result{}, err
		}
		res.To = p.Version
	}
	if err := node.Encode(w, out); err != nil {
		return Result{}, errors.Wrap(err, "encode document")
	}
	res.Digest = node.Fingerprint(out)
	return res, nil
}
