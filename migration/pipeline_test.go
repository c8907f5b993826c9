package migration

import (
	"testing"

	"github.com/iov-one/pkconv"
	"github.com/iov-one/pkconv/errors"
	"github.com/iov-one/pkconv/model"
	"github.com/iov-one/pkconv/node"
	"github.com/iov-one/pkconv/pkconvtest/assert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	v1 pkconv.Version = 100
	v2 pkconv.Version = 200
	v3 pkconv.Version = 300
	v4 pkconv.Version = 400
)

// appendName returns a typed transform recording its execution in the name
// of the individual.
func appendName(suffix string) TypedFunc {
	return func(obj model.BuildingBlock) error {
		ind := obj.(*model.Individual)
		ind.Name += suffix
		return nil
	}
}

func TestNewPipeline(t *testing.T) {
	cases := map[string]struct {
		steps   []Step
		wantErr *errors.Error
	}{
		"empty pipeline": {
			steps: nil,
		},
		"sequential steps": {
			steps: []Step{
				{From: v2, To: v3},
				{From: v1, To: v2},
			},
		},
		"steps can skip versions": {
			steps: []Step{
				{From: v1, To: v3},
				{From: v3, To: v4},
			},
		},
		"same source version": {
			steps: []Step{
				{Name: "first", From: v1, To: v2},
				{Name: "second", From: v1, To: v3},
			},
			wantErr: errors.ErrDuplicateStepVersion,
		},
		"version not increased": {
			steps: []Step{
				{From: v2, To: v2},
			},
			wantErr: errors.ErrMigrationCycle,
		},
		"version decreased": {
			steps: []Step{
				{From: v2, To: v1},
			},
			wantErr: errors.ErrMigrationCycle,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p, err := NewPipeline(tc.steps)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil && p == nil {
				t.Fatal("pipeline expected")
			}
		})
	}
}

func TestMustNewPipelinePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewPipeline([]Step{
			{From: v1, To: v2},
			{From: v1, To: v2},
		})
	})
}

func TestConvertGraph(t *testing.T) {
	p := MustNewPipeline([]Step{
		{From: v1, To: v2, Typed: appendName("-2")},
		// Structural only step. The typed pass must advance the version
		// without doing anything.
		{From: v2, To: v3, Structural: func(*node.Node) error { return nil }},
		{From: v3, To: v4, Typed: appendName("-4")},
	}, WithLogger(log.TestingLogger()))

	assert.Equal(t, v4, p.Current())

	cases := map[string]struct {
		from     pkconv.Version
		wantVer  pkconv.Version
		wantName string
	}{
		"oldest version":  {from: v1, wantVer: v4, wantName: "john-2-4"},
		"middle version":  {from: v2, wantVer: v4, wantName: "john-4"},
		"current version": {from: v4, wantVer: v4, wantName: "john"},
		"future version":  {from: 500, wantVer: 500, wantName: "john"},
		"unknown version": {from: 150, wantVer: 150, wantName: "john"},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ind := model.NewIndividual("john", model.Species{Name: model.HumanSpecies})
			got, err := p.ConvertGraph(ind, tc.from)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantVer, got)
			assert.Equal(t, tc.wantName, ind.Name)
			if got < tc.from {
				t.Fatalf("version went back from %s to %s", tc.from, got)
			}
		})
	}
}

func TestConvertStructuralAbsentPass(t *testing.T) {
	var calls int
	p := MustNewPipeline([]Step{
		{From: v1, To: v2, Typed: appendName("x")},
		{From: v2, To: v3, Structural: func(root *node.Node) error {
			calls++
			root.SetAttr("touched", "yes")
			return nil
		}},
	})

	root := node.New("Project")
	got, err := p.ConvertStructural(root, v1)
	assert.Nil(t, err)
	assert.Equal(t, v3, got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, true, root.HasAttr("touched"))

	if _, err := p.ConvertStructural(nil, v1); !errors.ErrEmpty.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	if _, err := p.ConvertGraph(nil, v1); !errors.ErrEmpty.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestConvertFailureStopsMigration(t *testing.T) {
	var lastCalled bool
	p := MustNewPipeline([]Step{
		{Name: "breaking", From: v1, To: v2, Typed: func(model.BuildingBlock) error {
			return errors.Wrap(errors.ErrState, "broken")
		}},
		{From: v2, To: v3, Typed: func(model.BuildingBlock) error {
			lastCalled = true
			return nil
		}},
	})

	ind := model.NewIndividual("john", model.Species{Name: model.HumanSpecies})
	got, err := p.ConvertGraph(ind, v1)
	if !errors.ErrState.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	assert.Equal(t, v1, got)
	assert.Equal(t, false, lastCalled)
	assert.Equal(t, "typed pass, step breaking (1.0.0 -> 2.0.0): broken: invalid state", err.Error())
}

func TestConvertRecoversPanic(t *testing.T) {
	p := MustNewPipeline([]Step{
		{From: v1, To: v2, Structural: func(*node.Node) error {
			panic("boom")
		}},
	})
	_, err := p.ConvertStructural(node.New("Project"), v1)
	if !errors.ErrPanic.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestIterationBound(t *testing.T) {
	// A cycle cannot be registered using the constructor.
	p := &Pipeline{
		steps: map[pkconv.Version]Step{
			v1: {From: v1, To: v2},
			v2: {From: v2, To: v1},
		},
		logger: log.NewNopLogger(),
	}
	_, err := p.ConvertStructural(node.New("Project"), v1)
	if !errors.ErrMigrationCycle.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	assert.Equal(t, 2, len(p.Plan(v1)))
}

func TestPlan(t *testing.T) {
	p := MustNewPipeline([]Step{
		{Name: "b", From: v2, To: v3},
		{Name: "a", From: v1, To: v2},
		{Name: "c", From: v3, To: v4},
	})

	var names []string
	for _, s := range p.Plan(v2) {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"b", "c"}, names)
	assert.Equal(t, 0, len(p.Plan(v4)))

	names = names[:0]
	for _, s := range p.Steps() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, "2.0.0 -> 3.0.0", Step{From: v2, To: v3}.String())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	p := MustNewPipeline([]Step{
		{Name: "ok", From: v1, To: v2},
		{Name: "fail", From: v2, To: v3, Typed: func(model.BuildingBlock) error {
			return errors.ErrState
		}},
	}, WithMetrics(m))

	ind := model.NewIndividual("john", model.Species{Name: model.HumanSpecies})
	_, err := p.ConvertGraph(ind, v1)
	if !errors.ErrState.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	_, err = p.ConvertStructural(node.New("Project"), v1)
	assert.Nil(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.steps.WithLabelValues("typed", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("typed", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.steps.WithLabelValues("structural", "fail")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}
