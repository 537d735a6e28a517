package conc

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	ants "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
)

func TestPool(t *testing.T) {
	pool := NewPool[int](2)
	defer pool.Release()
	assert.Equal(t, 2, pool.Cap())

	futures := make([]*Future[int], 0, 10)
	for i := 0; i < 10; i++ {
		i := i
		futures = append(futures, pool.Submit(func() (int, error) {
			if i == 3 {
				return 0, errors.New("three")
			}
			return i * i, nil
		}))
	}

	errs := AwaitAll(futures...)
	for i, err := range errs {
		if i == 3 {
			assert.EqualError(t, err, "three")
			assert.False(t, futures[i].OK())
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, i*i, futures[i].Value())
	}
}

func TestPoolNonBlocking(t *testing.T) {
	pool := NewPool[int](1, WithNonBlocking(true), WithExpiryDuration(time.Second))
	defer pool.Release()

	release := make(chan struct{})
	first := pool.Submit(func() (int, error) {
		<-release
		return 1, nil
	})
	second := pool.Submit(func() (int, error) { return 2, nil })
	assert.True(t, errors.Is(second.Err(), ants.ErrPoolOverload))

	close(release)
	v, err := first.Await()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestPoolConcealPanic(t *testing.T) {
	pool := NewPool[int](1, WithConcealPanic(true))
	defer pool.Release()

	f := pool.Submit(func() (int, error) { panic("boom") })
	assert.Error(t, f.Err())
}
