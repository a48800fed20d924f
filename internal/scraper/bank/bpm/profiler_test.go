package bpm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stepClock advances by step on every read.
func stepClock(step time.Duration) func() time.Time {
	now := fixedTime
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestProfiler_Summary(t *testing.T) {
	p := NewProfiler()
	p.now = stepClock(10 * time.Millisecond)

	p.Track(OpExtract)()
	p.Track(OpExtract)()
	p.Track(OpBuild)()

	s := p.Summary()
	require.Len(t, s, 2)
	assert.Equal(t, 2, s[OpExtract].Count)
	assert.Equal(t, 20*time.Millisecond, s[OpExtract].TotalTime)
	assert.Equal(t, 10*time.Millisecond, s[OpExtract].AverageTime)
	assert.InDelta(t, 100.0, s[OpExtract].OpsPerSecond, 0.001)
	assert.Equal(t, 1, s[OpBuild].Count)
}

func TestProfiler_Nil(t *testing.T) {
	var p *Profiler

	assert.NotPanics(t, func() { p.Track(OpBuild)() })
	assert.Empty(t, p.Summary())
}

func TestProfiler_Log(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler()
	p.now = stepClock(time.Millisecond)
	p.Track(OpClassify)()
	p.Track(OpBuild)()

	p.Log(zap.New(core))

	entries := logs.FilterMessage("operation timings").All()
	require.Len(t, entries, 2)
	assert.Equal(t, OpBuild, entries[0].ContextMap()["operation"])
	assert.Equal(t, OpClassify, entries[1].ContextMap()["operation"])
}
