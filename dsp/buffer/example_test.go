package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-daw/dsp/buffer"
)

func ExamplePool() {
	pool := buffer.NewPool(buffer.WithCeiling(1 << 16))

	b, err := pool.Acquire(2, 4)
	if err != nil {
		panic(err)
	}
	b.Zero()
	copy(b.Channel(0), []float64{1, 2, 3, 4})

	fmt.Println(b.Channels(), b.Frames(), b.Peak())
	fmt.Println(pool.Stats().InUse)

	_ = pool.Release(b)
	fmt.Println(pool.Stats().Free)

	// Output:
	// 2 4 4
	// 1
	// 1
}
