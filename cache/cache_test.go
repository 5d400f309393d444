package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "benchmarks.cache"))
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks.cache")

	c := New()
	c.Store(Result{Agent1: "a", Agent1WinRatio: 2.0 / 3, Agent2: "b", Agent2WinRatio: 1.0 / 3, Iterations: 3})
	c.Store(Result{Agent1: "b", Agent1WinRatio: 0.5, Agent2: "a", Agent2WinRatio: 0.25, Iterations: 4})
	c.Store(Result{Agent1: "a", Agent1WinRatio: 0, Agent2: "c", Agent2WinRatio: 0, Iterations: 1})

	require.NoError(t, Save(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks.cache")

	first := New()
	first.Store(Result{Agent1: "a", Agent2: "b", Agent1WinRatio: 1, Iterations: 1})
	first.Store(Result{Agent1: "b", Agent2: "a", Agent2WinRatio: 1, Iterations: 1})
	require.NoError(t, Save(path, first))

	second := New()
	second.Store(Result{Agent1: "x", Agent2: "y", Iterations: 2})
	require.NoError(t, Save(path, second))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, second, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks.cache")
	require.NoError(t, os.WriteFile(path, []byte("\x80\x04\x95pickle"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode cache")
}

func TestSaveFailureKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "benchmarks.cache")

	c := New()
	c.Store(Result{Agent1: "a", Agent2: "b", Iterations: 5})
	require.NoError(t, Save(path, c))

	err := Save(filepath.Join(dir, "missing", "benchmarks.cache"), c)
	require.Error(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestDirectionality(t *testing.T) {
	c := New()
	c.Store(Result{Agent1: "a", Agent2: "b", Agent1WinRatio: 0.9, Agent2WinRatio: 0.1, Iterations: 10})

	_, ok := c.Lookup("b", "a")
	assert.False(t, ok)

	c.Store(Result{Agent1: "b", Agent2: "a", Agent1WinRatio: 0.3, Agent2WinRatio: 0.6, Iterations: 10})

	ab, ok := c.Lookup("a", "b")
	require.True(t, ok)
	assert.Equal(t, 0.9, ab.Agent1WinRatio)

	ba, ok := c.Lookup("b", "a")
	require.True(t, ok)
	assert.Equal(t, 0.3, ba.Agent1WinRatio)
}

func TestStoreReplaces(t *testing.T) {
	c := New()
	c.Store(Result{Agent1: "a", Agent2: "b", Agent1WinRatio: 0.1, Iterations: 10})
	c.Store(Result{Agent1: "a", Agent2: "b", Agent1WinRatio: 0.7, Iterations: 20})

	assert.Len(t, c, 1)

	r, ok := c.Lookup("a", "b")
	require.True(t, ok)
	assert.Equal(t, 0.7, r.Agent1WinRatio)
	assert.Equal(t, 20, r.Iterations)
}

func TestResultsOrdered(t *testing.T) {
	c := New()
	c.Store(Result{Agent1: "c", Agent2: "a"})
	c.Store(Result{Agent1: "a", Agent2: "c"})
	c.Store(Result{Agent1: "a", Agent2: "b"})

	got := c.Results()
	require.Len(t, got, 3)
	assert.Equal(t, Key{"a", "b"}, got[0].Key())
	assert.Equal(t, Key{"a", "c"}, got[1].Key())
	assert.Equal(t, Key{"c", "a"}, got[2].Key())
}
