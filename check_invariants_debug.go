//go:build debug

// Gomega should not be dependency in non-debug build.

package dlfucache

import (
	"errors"
	"log"
	"math"

	"github.com/facebookgo/stackerr"
	. "github.com/onsi/gomega"

	"github.com/dbaarda/DLFUCache/pqueue"
)

var _ = func() (_ struct{}) {
	RegisterFailHandler(GomegaFailHandler)
	return
}()

func GomegaFailHandler(message string, callerSkip ...int) {
	skip := callerSkip[0] + 1
	log.Fatal("FATAL: invariants are broken:", stackerr.WrapSkip(errors.New(message), skip))
}

func (c *Cache[K, V]) checkInvariants() {
	Expect(c.cq.Len()).To(BeNumerically("<=", c.size), "cache tier overflow")
	Expect(c.mq.Len()).To(BeNumerically("<=", c.msize), "metadata tier overflow")
	Expect(c.inc).To(BeNumerically(">=", 1.0), "increment below 1")
	Expect(c.inc).To(BeNumerically("<", incMax), "increment not rescaled")
	c.cq.Each(func(e *pqueue.Entry[K, V]) {
		Expect(c.mq.Contains(e.Key())).To(BeFalse(), "key in both tiers")
		checkPriority(e.Priority())
	})
	c.mq.Each(func(e *pqueue.Entry[K, struct{}]) {
		checkPriority(e.Priority())
	})
}

func checkPriority(p float64) {
	Expect(math.IsNaN(p)).To(BeFalse(), "NaN priority")
	Expect(math.IsInf(p, 0)).To(BeFalse(), "infinite priority")
	Expect(p).To(BeNumerically(">=", 0.0), "negative priority")
}
