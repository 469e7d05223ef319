package test

import (
	"math/rand"
	"strconv"
	"sync"
	"time"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// CartOpKind names a cart mutation used by randomized tests.
type CartOpKind int

const (
	CartOpAdd CartOpKind = iota
	CartOpUpdate
	CartOpRemove
	CartOpClear
)

// CartOp is one generated cart mutation.
type CartOp struct {
	Kind      CartOpKind
	ProductID string
	UnitPrice int64
	Quantity  int
}

// RandomCartOps returns n mutations over a small product pool so that merges,
// updates and removals of present and absent lines all occur.
// Quantities range over [-2, 5] to exercise rejected and removing values.
func RandomCartOps(n, products int) []CartOp {
	if products <= 0 {
		products = 1
	}
	ops := make([]CartOp, n)
	for i := range ops {
		ops[i] = CartOp{
			Kind:      CartOpKind(weightedKind()),
			ProductID: "p-" + strconv.Itoa(randomIntn(products)),
			UnitPrice: int64(randomIntn(5000)),
			Quantity:  randomIntn(8) - 2,
		}
	}
	return ops
}

// weightedKind favours adds and updates over clears.
func weightedKind() int {
	switch r := randomIntn(20); {
	case r < 9:
		return int(CartOpAdd)
	case r < 15:
		return int(CartOpUpdate)
	case r < 19:
		return int(CartOpRemove)
	default:
		return int(CartOpClear)
	}
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
