package gpu

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderThreadAssert(t *testing.T) {
	rt := NewRenderThread()
	rt.Claim()

	assert.True(t, rt.IsCurrent())
	assert.NotPanics(t, func() { rt.Assert("Upload") })

	var wg sync.WaitGroup
	wg.Add(1)
	var panicked bool
	go func() {
		defer wg.Done()
		defer func() { panicked = recover() != nil }()
		rt.Assert("Upload")
	}()
	wg.Wait()
	assert.True(t, panicked)
}

func TestRenderThreadDisabled(t *testing.T) {
	rt := NewRenderThread()
	rt.SetEnabled(false)
	assert.NotPanics(t, func() { rt.Assert("Draw") })

	var nilThread *RenderThread
	assert.NotPanics(t, func() { nilThread.Assert("Draw") })
}
