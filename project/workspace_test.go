package project

import (
	"context"
	"strings"
	"testing"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/node"
	"github.com/iov-one/pkconv/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspace(t testing.TB, docs map[string]string) *Workspace {
	t.Helper()
	ws := NewWorkspace(store.NewMemStore())
	for name, doc := range docs {
		require.NoError(t, ws.Put(name, []byte(doc)))
	}
	return ws
}

func storedVersion(t testing.TB, ws *Workspace, name string) pkconv.Version {
	t.Helper()
	raw, err := ws.Get(name)
	require.NoError(t, err)
	root, err := node.Unmarshal(raw)
	require.NoError(t, err)
	v, err := StoredVersion(root)
	require.NoError(t, err)
	return v
}

func TestWorkspaceMigrateAll(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"b.xml": individualDocument,
		"a.xml": populationDocument,
		"c.xml": strings.Replace(individualDocument, `version="710"`, `version="720"`, 1),
	})
	l, _ := newLoader(t)

	report, err := ws.MigrateAll(context.Background(), l, 2)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Failed())
	assert.Equal(t, 2, report.Migrated())

	assert.Equal(t, "a.xml", report.Results[0].Document)
	assert.Equal(t, pkconv.V7_0_0, report.Results[0].From)
	assert.Equal(t, pkconv.V7_2_0, report.Results[0].To)
	assert.True(t, report.Results[0].Changed)

	for _, name := range []string{"a.xml", "b.xml", "c.xml"} {
		assert.Equal(t, pkconv.V7_2_0, storedVersion(t, ws, name), name)
	}

	// All documents are current, a second run leaves them untouched.
	report, err = ws.MigrateAll(context.Background(), l, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Migrated())
	for _, r := range report.Results {
		assert.False(t, r.Changed, r.Document)
	}
}

func TestWorkspaceKeepsDocumentsNotMigrated(t *testing.T) {
	future := strings.Replace(individualDocument, `version="710"`, `version="800"`, 1)
	future = strings.Replace(future, `name="Weight"`, `name="Weight" distribution="lognormal"`, 1)
	current := strings.Replace(individualDocument, `version="710"`, `version="720"`, 1)
	ws := newWorkspace(t, map[string]string{
		"current.xml": current,
		"future.xml":  future,
	})
	l, _ := newLoader(t)

	report, err := ws.MigrateAll(context.Background(), l, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Migrated())
	for _, r := range report.Results {
		assert.False(t, r.Changed, r.Document)
		assert.Equal(t, r.From, r.To, r.Document)
	}

	raw, err := ws.Get("future.xml")
	require.NoError(t, err)
	assert.Equal(t, future, string(raw))
	raw, err = ws.Get("current.xml")
	require.NoError(t, err)
	assert.Equal(t, current, string(raw))
}

func TestWorkspaceFailureKeepsDocuments(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"good.xml":   individualDocument,
		"broken.xml": strings.Replace(individualDocument, "Kidney_old", "Unknown_old", 1),
	})
	l, _ := newLoader(t)

	report, err := ws.MigrateAll(context.Background(), l, 4)
	require.Error(t, err)
	assert.True(t, errors.ErrUnknownLegacyValue.Is(err), "unexpected error: %+v", err)
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, "broken.xml", report.Failed()[0].Document)
	assert.Len(t, errors.FieldErrors(err, "broken.xml"), 1)

	// Nothing is written unless every document succeeds.
	raw, err := ws.Get("good.xml")
	require.NoError(t, err)
	assert.Equal(t, individualDocument, string(raw))
}

func TestWorkspaceCancelled(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.xml": individualDocument})
	l, _ := newLoader(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ws.MigrateAll(ctx, l, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, pkconv.V7_1_0, storedVersion(t, ws, "a.xml"))
}

func TestWorkspaceGet(t *testing.T) {
	ws := newWorkspace(t, nil)
	_, err := ws.Get("missing.xml")
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.True(t, errors.ErrEmpty.Is(ws.Put("", []byte("x"))))
}

func TestWorkspaceRemove(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.xml": individualDocument})

	ok, err := ws.Has("a.xml")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, ws.Remove("a.xml"))
	ok, err = ws.Has("a.xml")
	require.NoError(t, err)
	assert.False(t, ok)
	names, err := ws.Names()
	require.NoError(t, err)
	assert.Empty(t, names)

	assert.True(t, errors.ErrNotFound.Is(ws.Remove("a.xml")))
}
