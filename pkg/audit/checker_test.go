package audit

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	mu       sync.Mutex
	claimed  map[string]bool
	calls    map[string]int
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func newFakeRegistry(claimed ...string) *fakeRegistry {
	r := &fakeRegistry{claimed: map[string]bool{}, calls: map[string]int{}}
	for _, n := range claimed {
		r.claimed[n] = true
	}
	return r
}

func (r *fakeRegistry) Check(ctx context.Context, name string) Verdict {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.calls[name]++
	r.mu.Unlock()

	if r.claimed[name] {
		return Exists()
	}
	return NotFound()
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func TestCheckAll(t *testing.T) {
	reg := newFakeRegistry("lodash", "@types/node")
	c := NewChecker(reg, 2, quietLogger())

	got, err := c.CheckAll(context.Background(), []string{"lodash", "internal-utils", "@types/node"})
	require.NoError(t, err)

	assert.Equal(t, map[string]Verdict{
		"lodash":         {Exists: true, Status: "Package exists"},
		"@types/node":    {Exists: true, Status: "Package exists"},
		"internal-utils": {Exists: false, Status: "Package not found"},
	}, got)
}

func TestCheckAllExactlyOnce(t *testing.T) {
	reg := newFakeRegistry("a")
	c := NewChecker(reg, 4, quietLogger())

	got, err := c.CheckAll(context.Background(), []string{"a", "b", "a", "c", "b", "a"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, name := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, reg.calls[name], "lookups for %s", name)
	}
}

func TestCheckAllRespectsConcurrency(t *testing.T) {
	reg := newFakeRegistry()
	reg.delay = 10 * time.Millisecond
	c := NewChecker(reg, 2, quietLogger())

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	_, err := c.CheckAll(context.Background(), names)
	require.NoError(t, err)
	assert.LessOrEqual(t, reg.peak.Load(), int32(2))
}

func TestCheckAllSequential(t *testing.T) {
	reg := newFakeRegistry()
	reg.delay = time.Millisecond
	c := NewChecker(reg, 1, quietLogger())

	_, err := c.CheckAll(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), reg.peak.Load())
}

func TestCheckAllEmpty(t *testing.T) {
	reg := newFakeRegistry()
	got, err := NewChecker(reg, 0, nil).CheckAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, reg.calls)
}

func TestCheckAllCancelled(t *testing.T) {
	reg := newFakeRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := NewChecker(reg, 1, quietLogger()).CheckAll(ctx, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
	assert.Empty(t, reg.calls)
}

func TestNewCheckerDefaults(t *testing.T) {
	c := NewChecker(newFakeRegistry(), 0, nil)
	assert.Equal(t, DefaultConcurrency, c.Concurrency)
	assert.NotNil(t, c.Logger)
}
