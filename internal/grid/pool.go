package grid

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Pool recycles n x n scratch fields between solves of the same size.
type Pool struct {
	pool sync.Pool
	size int
}

func NewPool(n int) *Pool {
	return &Pool{
		size: n,
		pool: sync.Pool{
			New: func() interface{} {
				return New(n)
			},
		},
	}
}

func (p *Pool) Size() int { return p.size }

// Get returns a zeroed field.
func (p *Pool) Get() *mat.Dense {
	return p.pool.Get().(*mat.Dense)
}

func (p *Pool) Put(f *mat.Dense) {
	if f == nil {
		return
	}
	if r, c := f.Dims(); r == p.size && c == p.size {
		f.Zero()
		p.pool.Put(f)
	}
}
