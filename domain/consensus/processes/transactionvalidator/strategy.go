package transactionvalidator

import (
	"fmt"

	"github.com/biryukovmaxim/rusty-kaspa/util/workerpool"
)

type strategyKind int

const (
	strategySequential strategyKind = iota
	strategyParallel
	strategyPool
)

// Strategy selects how a ScriptChecker distributes the inputs of a
// transaction. The zero value is Sequential.
type Strategy struct {
	kind strategyKind
	pool *workerpool.Pool
}

// Sequential verifies inputs one after the other
func Sequential() Strategy {
	return Strategy{kind: strategySequential}
}

// Parallel verifies inputs on the default worker pool
func Parallel() Strategy {
	return Strategy{kind: strategyParallel}
}

// WithPool verifies inputs on the given pool
func WithPool(pool *workerpool.Pool) Strategy {
	return Strategy{kind: strategyPool, pool: pool}
}

func (s Strategy) String() string {
	switch s.kind {
	case strategySequential:
		return "sequential"
	case strategyParallel:
		return "parallel"
	case strategyPool:
		if s.pool == nil {
			return "pool(nil)"
		}
		return fmt.Sprintf("pool(%d)", s.pool.Size())
	default:
		return fmt.Sprintf("unknown(%d)", s.kind)
	}
}
