package bake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscatter/internal/logger"
	"github.com/Faultbox/skyscatter/pkg/scattering"
)

var (
	// ErrUnknownDependency is returned when a pass depends on a pass the graph lacks.
	ErrUnknownDependency = errors.New("unknown pass dependency")
	// ErrCycle is returned when pass dependencies form a cycle.
	ErrCycle = errors.New("pass dependency cycle")
	// ErrDuplicatePass is returned when two passes share a name.
	ErrDuplicatePass = errors.New("duplicate pass")
)

// Env is the state shared by the passes of one graph run.
type Env struct {
	Scene      *Scene
	Res        *Resources
	Dispatcher *Dispatcher

	sky *scattering.Model
}

// NewEnv returns an environment with empty resources.
func NewEnv(scene *Scene, d *Dispatcher) *Env {
	return &Env{Scene: scene, Res: &Resources{}, Dispatcher: d}
}

// Pass is one bake step. Run may read the resources of every pass named in
// Deps.
type Pass struct {
	Name string
	Deps []string
	Run  func(ctx context.Context, env *Env) error
}

// Graph orders passes by their dependencies.
type Graph struct {
	passes []Pass
	index  map[string]int
}

// NewGraph adds every pass in order.
func NewGraph(passes ...Pass) (*Graph, error) {
	g := &Graph{index: make(map[string]int)}
	for _, p := range passes {
		if err := g.Add(p); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add appends a pass. Dependencies are resolved by Order, so they may be
// added later.
func (g *Graph) Add(p Pass) error {
	if _, ok := g.index[p.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePass, p.Name)
	}
	g.index[p.Name] = len(g.passes)
	g.passes = append(g.passes, p)
	return nil
}

// Order returns the passes so that each follows all of its dependencies.
// Independent passes keep their insertion order.
func (g *Graph) Order() ([]Pass, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(g.passes))
	order := make([]Pass, 0, len(g.passes))

	var visit func(i int, path []string) error
	visit = func(i int, path []string) error {
		p := g.passes[i]
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrCycle, append(path, p.Name))
		}
		state[i] = visiting
		for _, dep := range p.Deps {
			j, ok := g.index[dep]
			if !ok {
				return fmt.Errorf("%w: %s needs %s", ErrUnknownDependency, p.Name, dep)
			}
			if err := visit(j, append(path, p.Name)); err != nil {
				return err
			}
		}
		state[i] = done
		order = append(order, p)
		return nil
	}

	for i := range g.passes {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Run executes every pass in dependency order, stopping at the first error.
func (g *Graph) Run(ctx context.Context, env *Env) error {
	order, err := g.Order()
	if err != nil {
		return err
	}
	log := logger.Named("bake")
	total := time.Now()
	for _, p := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := p.Run(ctx, env); err != nil {
			return fmt.Errorf("pass %s: %w", p.Name, err)
		}
		log.Info("pass complete",
			zap.String("pass", p.Name),
			zap.Duration("elapsed", time.Since(start)))
	}
	log.Info("graph complete",
		zap.Int("passes", len(order)),
		zap.Int("workers", env.Dispatcher.Workers()),
		zap.Duration("elapsed", time.Since(total)))
	return nil
}
