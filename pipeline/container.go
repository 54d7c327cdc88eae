package pipeline

import (
	"fmt"
	"reflect"
	"sync"
)

// container is a tiny Singleton-scoped constructor registry that builds
// and memoizes one value per registered type, trimmed to the one scope
// this tool actually needs. NewApp does not use it (it constructs its
// collaborators directly for fx); only this package's tests exercise it.
// Reflective lookup like this is fine for tooling wiring; the generated
// DI code the analyzer emits never uses reflection.
type container struct {
	mu        sync.Mutex
	providers map[reflect.Type]*provider
}

type provider struct {
	constructor reflect.Value
	instance    reflect.Value
	built       bool
}

func newContainer() *container {
	return &container{providers: make(map[reflect.Type]*provider)}
}

// register adds constructor, a func(...) T, keyed by T.
func (c *container) register(constructor interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cv := reflect.ValueOf(constructor)
	ct := cv.Type()
	if ct.Kind() != reflect.Func || ct.NumOut() != 1 {
		return fmt.Errorf("pipeline: container constructor must be a func returning exactly one value")
	}
	if err := c.checkCircular(ct, map[reflect.Type]bool{ct.Out(0): true}); err != nil {
		return err
	}
	c.providers[ct.Out(0)] = &provider{constructor: cv}
	return nil
}

func (c *container) checkCircular(ct reflect.Type, visiting map[reflect.Type]bool) error {
	for i := 0; i < ct.NumIn(); i++ {
		argType := ct.In(i)
		if visiting[argType] {
			return fmt.Errorf("pipeline: circular container dependency on %v", argType)
		}
		if p, ok := c.providers[argType]; ok {
			visiting[argType] = true
			if err := c.checkCircular(p.constructor.Type(), visiting); err != nil {
				return err
			}
			delete(visiting, argType)
		}
	}
	return nil
}

// resolve returns the memoized singleton instance of t, building it (and
// its dependencies, recursively) on first use.
func (c *container) resolve(t reflect.Type) (reflect.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocked(t)
}

func (c *container) resolveLocked(t reflect.Type) (reflect.Value, error) {
	p, ok := c.providers[t]
	if !ok {
		return reflect.Value{}, fmt.Errorf("pipeline: no provider registered for %v", t)
	}
	if p.built {
		return p.instance, nil
	}

	ct := p.constructor.Type()
	args := make([]reflect.Value, ct.NumIn())
	for i := range args {
		arg, err := c.resolveLocked(ct.In(i))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("pipeline: resolving argument %d of %v: %w", i, t, err)
		}
		args[i] = arg
	}

	out := p.constructor.Call(args)
	p.instance = out[0]
	p.built = true
	return p.instance, nil
}
