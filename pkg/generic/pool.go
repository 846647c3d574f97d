package generic

import "sync"

// Pool is a typed sync.Pool. Values come back from Get already reset.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// NewPool returns a pool that makes values with generate and clears them
// with reset, which may be nil, before handing them out again.
func NewPool[T any](generate func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{
		pool:  sync.Pool{New: func() any { return generate() }},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	v := p.pool.Get().(T)
	if p.reset != nil {
		p.reset(v)
	}
	return v
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}

// With lends a value to fn and takes it back afterwards.
func With[T, R any](p *Pool[T], fn func(T) R) R {
	v := p.Get()
	defer p.Put(v)
	return fn(v)
}
