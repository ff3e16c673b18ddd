package bake

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func noop(context.Context, *Env) error { return nil }

func names(passes []Pass) []string {
	out := make([]string, len(passes))
	for i, p := range passes {
		out[i] = p.Name
	}
	return out
}

func TestGraphOrder(t *testing.T) {
	g, err := NewGraph(
		Pass{Name: "sky", Deps: []string{"sky_view", "transmittance"}, Run: noop},
		Pass{Name: "sky_view", Deps: []string{"multi_scatter"}, Run: noop},
		Pass{Name: "weather", Run: noop},
		Pass{Name: "multi_scatter", Deps: []string{"transmittance"}, Run: noop},
		Pass{Name: "transmittance", Run: noop},
	)
	if err != nil {
		t.Fatal(err)
	}
	order, err := g.Order()
	if err != nil {
		t.Fatalf("Order() error = %v", err)
	}
	want := []string{"transmittance", "multi_scatter", "sky_view", "sky", "weather"}
	if got := names(order); !reflect.DeepEqual(got, want) {
		t.Errorf("Order() = %v, want %v", got, want)
	}
}

func TestGraphErrors(t *testing.T) {
	tests := []struct {
		name   string
		passes []Pass
		want   error
	}{
		{
			name:   "unknown dependency",
			passes: []Pass{{Name: "sky", Deps: []string{"sky_view"}, Run: noop}},
			want:   ErrUnknownDependency,
		},
		{
			name: "cycle",
			passes: []Pass{
				{Name: "a", Deps: []string{"c"}, Run: noop},
				{Name: "b", Deps: []string{"a"}, Run: noop},
				{Name: "c", Deps: []string{"b"}, Run: noop},
			},
			want: ErrCycle,
		},
		{
			name:   "self dependency",
			passes: []Pass{{Name: "a", Deps: []string{"a"}, Run: noop}},
			want:   ErrCycle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGraph(tt.passes...)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := g.Order(); !errors.Is(err, tt.want) {
				t.Errorf("Order() error = %v, want %v", err, tt.want)
			}
			if err := g.Run(context.Background(), NewEnv(&Scene{}, NewDispatcher(1))); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGraphDuplicatePass(t *testing.T) {
	_, err := NewGraph(Pass{Name: "a", Run: noop}, Pass{Name: "a", Run: noop})
	if !errors.Is(err, ErrDuplicatePass) {
		t.Errorf("NewGraph() error = %v, want %v", err, ErrDuplicatePass)
	}
}

func TestGraphRunStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	record := func(name string, err error) Pass {
		return Pass{Name: name, Run: func(context.Context, *Env) error {
			ran = append(ran, name)
			return err
		}}
	}
	g, err := NewGraph(record("a", nil), record("b", boom), record("c", nil))
	if err != nil {
		t.Fatal(err)
	}
	err = g.Run(context.Background(), NewEnv(&Scene{}, NewDispatcher(1)))
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(ran, want) {
		t.Errorf("ran %v, want %v", ran, want)
	}
}

func TestPassesReportMissingInputs(t *testing.T) {
	env := NewEnv(&Scene{}, NewDispatcher(1))
	tests := []Pass{MultiScatterPass(), SkyViewPass(), AerialPerspectivePass(), SkyPass(), CloudsPass(), ResolvePass(true)}
	for _, p := range tests {
		t.Run(p.Name, func(t *testing.T) {
			if err := p.Run(context.Background(), env); !errors.Is(err, ErrMissingInput) {
				t.Errorf("Run() error = %v, want %v", err, ErrMissingInput)
			}
		})
	}
}

func TestStandardGraphsOrder(t *testing.T) {
	for _, withClouds := range []bool{false, true} {
		g, err := NewGraph(FramePasses(withClouds)...)
		if err != nil {
			t.Fatal(err)
		}
		order, err := g.Order()
		if err != nil {
			t.Fatalf("FramePasses(%v) Order() error = %v", withClouds, err)
		}
		if got := order[len(order)-1].Name; got != PassResolve {
			t.Errorf("FramePasses(%v) last pass = %s, want %s", withClouds, got, PassResolve)
		}
	}
	g, err := NewGraph(LUTPasses()...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Order(); err != nil {
		t.Errorf("LUTPasses() Order() error = %v", err)
	}
}
