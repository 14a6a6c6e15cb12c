package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownHook_RunsNewestFirst(t *testing.T) {
	hook := NewShutdownHook()

	var order []string
	hook.Register("touch", func() error { order = append(order, "touch"); return nil })
	hook.Register("sink", func() error { order = append(order, "sink"); return nil })
	require.Equal(t, 2, hook.Count())

	require.NoError(t, hook.Shutdown())
	assert.Equal(t, []string{"sink", "touch"}, order)
	assert.Equal(t, 0, hook.Count())
}

func TestShutdownHook_ContinuesAfterError(t *testing.T) {
	hook := NewShutdownHook()

	ran := 0
	hook.Register("first", func() error { ran++; return nil })
	hook.Register("broken", func() error { ran++; return errors.New("cleanup failed") })
	hook.Register("last", func() error { ran++; return nil })

	err := hook.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: cleanup failed")
	assert.Equal(t, 3, ran)
	assert.Equal(t, 0, hook.Count())
}

func TestShutdownHook_EmptyAndRepeated(t *testing.T) {
	hook := NewShutdownHook()
	assert.NoError(t, hook.Shutdown())

	calls := 0
	hook.Register("once", func() error { calls++; return nil })
	require.NoError(t, hook.Shutdown())
	require.NoError(t, hook.Shutdown())
	assert.Equal(t, 1, calls)
}

func TestShutdownHook_ConcurrentRegister(t *testing.T) {
	hook := NewShutdownHook()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hook.Register(fmt.Sprintf("hook-%d", n), func() error { return nil })
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, hook.Count())
}
