package pageobject

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_FulfilledOnce(t *testing.T) {
	f := newFuture[int]()

	assert.True(t, f.fulfill(1, nil))
	assert.False(t, f.fulfill(2, errBoom))

	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFuture_NilValueStillFulfills(t *testing.T) {
	f := newFuture[Handle]()
	f.fulfill(nil, nil)

	select {
	case <-f.Done():
	default:
		t.Fatal("future not done")
	}
	v, err := f.Await(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestFuture_ManyWaiters(t *testing.T) {
	f := newFuture[string]()

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = f.Result()
		}(i)
	}
	f.fulfill("done", nil)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "done", r)
	}
}

func TestFuture_AwaitCanceled(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, v)

	f.fulfill(7, nil)
	v, err = f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
