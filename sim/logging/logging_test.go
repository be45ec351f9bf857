package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hector-sim/hector-core/sim/simerr"
)

func TestChannel_LevelGating(t *testing.T) {
	// GIVEN a channel writing to a buffer at INFO
	var buf bytes.Buffer
	ch := NewChannel(Config{Output: &buf})
	require.NoError(t, ch.Open("dummy", false, logrus.InfoLevel))

	// WHEN writing below and at the level
	ch.Debugf("hidden %d", 1)
	ch.Infof("shown %d", 2)

	// THEN only the enabled message appears, tagged with the component name
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "component=dummy")
	assert.False(t, ch.Enabled(logrus.DebugLevel))
	assert.True(t, ch.Enabled(logrus.WarnLevel))
}

func TestChannel_OpenCloseOnce(t *testing.T) {
	var buf bytes.Buffer
	ch := NewChannel(Config{Output: &buf})

	assert.True(t, errors.Is(ch.Close(), simerr.LifecycleError), "close before open")

	require.NoError(t, ch.Open("core", false, logrus.DebugLevel))
	assert.True(t, errors.Is(ch.Open("core", false, logrus.DebugLevel), simerr.LifecycleError), "double open")
	assert.True(t, ch.IsOpen())

	require.NoError(t, ch.Close())
	assert.False(t, ch.IsOpen())
	assert.True(t, errors.Is(ch.Close(), simerr.LifecycleError), "double close")
	assert.True(t, errors.Is(ch.Open("core", false, logrus.DebugLevel), simerr.LifecycleError), "reopen")
}

func TestChannel_WritesAfterCloseAreDropped(t *testing.T) {
	var buf bytes.Buffer
	ch := NewChannel(Config{Output: &buf})
	require.NoError(t, ch.Open("dummy", false, logrus.DebugLevel))
	require.NoError(t, ch.Close())

	ch.Errorf("late")

	assert.Empty(t, buf.String())
}

func TestChannel_FileAppendAndTruncate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dummy.log")

	first := NewChannel(Config{Dir: dir})
	require.NoError(t, first.Open("dummy", false, logrus.DebugLevel))
	first.Debugf("first run")
	require.NoError(t, first.Close())

	second := NewChannel(Config{Dir: dir})
	require.NoError(t, second.Open("dummy", true, logrus.DebugLevel))
	second.Debugf("second run")
	require.NoError(t, second.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")

	third := NewChannel(Config{Dir: dir})
	require.NoError(t, third.Open("dummy", false, logrus.DebugLevel))
	third.Debugf("third run")
	require.NoError(t, third.Close())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "first run")
	assert.Contains(t, string(data), "third run")
}
