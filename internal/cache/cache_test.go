package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeMemoizes(t *testing.T) {
	c := New(time.Minute, time.Minute)

	calls := 0
	compute := func() (any, error) {
		calls++
		return 42, nil
	}

	key := Key("kpis", "loc-1")

	v, err := c.GetOrCompute(key, []string{TagKPIs}, compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	// Second call within the TTL must not recompute.
	v, err = c.GetOrCompute(key, []string{TagKPIs}, compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute, time.Minute)

	calls := 0
	failing := func() (any, error) {
		calls++
		return nil, errors.New("db down")
	}

	_, err := c.GetOrCompute("k", []string{TagKPIs}, failing)
	assert.Error(t, err)

	_, err = c.GetOrCompute("k", []string{TagKPIs}, failing)
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestInvalidateByTag(t *testing.T) {
	c := New(time.Minute, time.Minute)

	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	key := Key("summary", "loc-1", "week")
	_, err := c.GetOrCompute(key, []string{TagBatteries, TagDashboard}, compute)
	require.NoError(t, err)

	// Invalidating any tag the entry carries kills it.
	c.Invalidate(TagBatteries)

	v, err := c.GetOrCompute(key, []string{TagBatteries, TagDashboard}, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestInvalidateLeavesDisjointEntries(t *testing.T) {
	c := New(time.Minute, time.Minute)

	batteryCalls, invoiceCalls := 0, 0

	_, err := c.GetOrCompute("battery-summary", []string{TagBatteries}, func() (any, error) {
		batteryCalls++
		return "b", nil
	})
	require.NoError(t, err)

	_, err = c.GetOrCompute("invoice-summary", []string{TagInvoices}, func() (any, error) {
		invoiceCalls++
		return "i", nil
	})
	require.NoError(t, err)

	c.Invalidate(TagBatteries)

	_, err = c.GetOrCompute("invoice-summary", []string{TagInvoices}, func() (any, error) {
		invoiceCalls++
		return "i", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, invoiceCalls)
	assert.Equal(t, 1, batteryCalls)
}

func TestTTLExpiry(t *testing.T) {
	c := New(20*time.Millisecond, time.Minute)

	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	_, err := c.GetOrCompute("k", []string{TagKPIs}, compute)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	v, err := c.GetOrCompute("k", []string{TagKPIs}, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestKeyIncludesScopeAndParams(t *testing.T) {
	assert.NotEqual(t, Key("kpis", "loc-1"), Key("kpis", "loc-2"))
	assert.NotEqual(t, Key("kpis", "loc-1", "4"), Key("kpis", "loc-1", "8"))
	assert.Equal(t, Key("kpis", "loc-1", "4"), Key("kpis", "loc-1", "4"))
}

func TestFlush(t *testing.T) {
	c := New(time.Minute, time.Minute)

	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	_, err := c.GetOrCompute("k", []string{TagKPIs}, compute)
	require.NoError(t, err)

	c.Flush()

	_, err = c.GetOrCompute("k", []string{TagKPIs}, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
