package cache

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMissing(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	_, ok := c.Lookup(HTTPKey("https://example.com/a.zip", "a.zip"))
	assert.False(t, ok)
}

func TestReserveCompleteThenLookup(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := HTTPKey("https://example.com/a.zip", "a.zip")
	res, err := c.Reserve(key)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(res.PartialPath(), []byte("data"), 0644))
	require.NoError(t, res.Complete())

	path, ok := c.Lookup(key)
	require.True(t, ok)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestReserveAbortRemovesPartial(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := HTTPKey("https://example.com/a.zip", "a.zip")
	res, err := c.Reserve(key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(res.PartialPath(), []byte("data"), 0644))
	res.Abort()

	_, err = os.Stat(res.PartialPath())
	assert.True(t, os.IsNotExist(err))

	_, ok := c.Lookup(key)
	assert.False(t, ok)
}

func TestConcurrentReserveSerializes(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	key := HTTPKey("https://example.com/a.zip", "a.zip")

	var order []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := c.Reserve(key)
			if err != nil {
				return
			}
			mu.Lock()
			order = append(order, "enter")
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			order = append(order, "exit")
			mu.Unlock()
			os.WriteFile(res.PartialPath(), []byte("x"), 0644)
			res.Complete()
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"enter", "exit", "enter", "exit"}, order)
}

func TestGitHubKeyDistinctCoordinates(t *testing.T) {
	k1 := GitHubKey("Argent77", "A7-DlcMerger", "release", "v1.3/asset.zip")
	k2 := GitHubKey("Argent77", "A7-DlcMerger", "tag", "v1.3")
	assert.NotEqual(t, k1, k2)
}
