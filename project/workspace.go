package project

import (
	"bytes"
	"context"
	"sort"

	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/store"
	"golang.org/x/sync/errgroup"
)

// Workspace holds a set of raw project documents by name.
type Workspace struct {
	db store.CacheableKVStore
}

// NewWorkspace returns a workspace backed by the given store.
func NewWorkspace(db store.CacheableKVStore) *Workspace {
	return &Workspace{db: db}
}

// Put stores a raw document.
func (w *Workspace) Put(name string, raw []byte) error {
	if name == "" {
		return errors.Wrap(errors.ErrEmpty, "document name")
	}
	return w.db.Set([]byte(name), raw)
}

// Get returns a raw document.
func (w *Workspace) Get(name string) ([]byte, error) {
	raw, err := w.db.Get([]byte(name))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "document %q", name)
	}
	return raw, nil
}

// Has returns true if the workspace holds a document with the given name.
func (w *Workspace) Has(name string) (bool, error) {
	return w.db.Has([]byte(name))
}

// Remove deletes a document.
func (w *Workspace) Remove(name string) error {
	ok, err := w.Has(name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "document %q", name)
	}
	return w.db.Delete([]byte(name))
}

// Names returns the names of all documents in ascending order.
func (w *Workspace) Names() ([]string, error) {
	var names []string
	err := w.db.Iterate(nil, nil, func(key, _ []byte) bool {
		names = append(names, string(key))
		return true
	})
	return names, err
}

// DocumentResult is the outcome of migrating a single workspace document.
type DocumentResult struct {
	Document string
	Result
	// Changed is true if the document was migrated to a newer version and
	// replaced. Documents already current or newer are kept byte for byte.
	Changed bool
	Err     error
}

// Report collects the outcome of migrating all workspace documents.
type Report struct {
	Results []DocumentResult
}

// Failed returns the results of documents that could not be migrated.
func (r Report) Failed() []DocumentResult {
	var res []DocumentResult
	for _, d := range r.Results {
		if d.Err != nil {
			res = append(res, d)
		}
	}
	return res
}

// Migrated returns the number of documents whose version changed.
func (r Report) Migrated() int {
	var n int
	for _, d := range r.Results {
		if d.Err == nil && d.From != d.To {
			n++
		}
	}
	return n
}

// Err combines the errors of all failed documents, or returns nil.
func (r Report) Err() error {
	var errs error
	for _, d := range r.Failed() {
		errs = errors.AppendField(errs, d.Document, d.Err)
	}
	return errs
}

// MigrateAll migrates every document of the workspace using up to workers
// concurrent loaders. Migrated documents replace the stored ones only if all
// documents succeed. Cancelling the context stops before the next document.
func (w *Workspace) MigrateAll(ctx context.Context, l *Loader, workers int) (Report, error) {
	names, err := w.Names()
	if err != nil {
		return Report{}, errors.Wrap(err, "list documents")
	}
	sort.Strings(names)
	if workers < 1 {
		workers = 1
	}

	cache := w.db.CacheWrap()
	results := make([]DocumentResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = w.migrate(l, cache, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cache.Discard()
		return Report{}, errors.Wrap(err, "migrate workspace")
	}

	report := Report{Results: results}
	if err := report.Err(); err != nil {
		cache.Discard()
		return report, err
	}
	if err := cache.Write(); err != nil {
		return report, errors.Wrap(err, "commit workspace")
	}
	return report, nil
}

func (w *Workspace) migrate(l *Loader, cache store.KVStore, name string) DocumentResult {
	res := DocumentResult{Document: name}
	raw, err := w.Get(name)
	if err != nil {
		res.Err = err
		return res
	}
	var out bytes.Buffer
	res.Result, res.Err = l.Migrate(bytes.NewReader(raw), &out)
	if res.Err != nil {
		return res
	}
	res.Changed = res.From < res.To
	if res.Changed {
		res.Err = cache.Set([]byte(name), out.Bytes())
	}
	return res
}
