package util

import (
	"sync/atomic"
)

type AtomicCounter struct {
	cnt uint64
}

func (c *AtomicCounter) Get() uint64 {
	return atomic.LoadUint64(&c.cnt)
}

func (c *AtomicCounter) Add(delta uint64) {
	atomic.AddUint64(&c.cnt, delta)
}

func (c *AtomicCounter) Reset() {
	atomic.StoreUint64(&c.cnt, 0)
}
