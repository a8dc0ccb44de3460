package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCacheValid(t *testing.T) {
	now := time.Now()

	report := Report{CacheDuration: 300}
	assert.False(t, report.CacheValid(now), "no cache stamped yet")

	report.StampCache(`{"total":3}`, now)
	require.NotNil(t, report.CacheExpiresAt)
	assert.Equal(t, now.Add(300*time.Second), *report.CacheExpiresAt)

	assert.True(t, report.CacheValid(now))
	assert.True(t, report.CacheValid(now.Add(299*time.Second)))
	assert.False(t, report.CacheValid(now.Add(300*time.Second)), "expiry instant is stale")
	assert.False(t, report.CacheValid(now.Add(time.Hour)))
}

func TestReportCacheInvalidWithoutData(t *testing.T) {
	now := time.Now()
	expiry := now.Add(time.Minute)

	report := Report{CacheExpiresAt: &expiry}
	assert.False(t, report.CacheValid(now), "expiry without payload is not a valid cache")
}

func TestReportRestampReplacesExpiry(t *testing.T) {
	now := time.Now()
	report := Report{CacheDuration: 60}

	report.StampCache(`{"v":1}`, now)
	first := *report.CacheExpiresAt

	later := now.Add(2 * time.Minute)
	report.StampCache(`{"v":2}`, later)
	assert.Equal(t, `{"v":2}`, report.CachedData)
	assert.True(t, report.CacheExpiresAt.After(first))
	assert.True(t, report.CacheValid(later))
}
