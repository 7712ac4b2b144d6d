package client

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/startups/internal/game/engine"
)

func stateV(version int) *engine.GameState {
	return &engine.GameState{Version: version}
}

func TestCacheApplyVersionGate(t *testing.T) {
	var sc StateCache

	assert.True(t, sc.Apply(stateV(3)))
	assert.Equal(t, 3, sc.Get().Version)

	// equal and lower versions are dropped
	assert.False(t, sc.Apply(stateV(3)))
	assert.False(t, sc.Apply(stateV(1)))
	assert.Equal(t, 3, sc.Get().Version)

	assert.True(t, sc.Apply(stateV(4)))
	assert.Equal(t, 4, sc.Get().Version)
}

func TestCacheResetBypassesGate(t *testing.T) {
	var sc StateCache
	sc.Apply(stateV(9))

	// a fresh game restarts the version line
	sc.Reset(stateV(1))
	assert.Equal(t, 1, sc.Get().Version)
	assert.True(t, sc.Apply(stateV(2)))
}

func TestCacheClear(t *testing.T) {
	var sc StateCache
	sc.Apply(stateV(2))
	sc.Clear()
	assert.Nil(t, sc.Get())

	assert.True(t, sc.Apply(stateV(1)), "empty cache accepts any version")
}

func TestCacheConcurrentApplyKeepsMaxVersion(t *testing.T) {
	var sc StateCache
	var wg sync.WaitGroup
	for v := 1; v <= 50; v++ {
		wg.Add(1)
		go func(version int) {
			defer wg.Done()
			sc.Apply(stateV(version))
		}(v)
	}
	wg.Wait()

	assert.Equal(t, 50, sc.Get().Version)
}
