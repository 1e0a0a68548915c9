package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBucketSMSBudget(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	bucket := NewLocalBucket(fc)
	ctx := context.Background()

	first, err := bucket.Allow(ctx, SMSKey, SMSRate, SMSBurst)
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	second, err := bucket.Allow(ctx, SMSKey, SMSRate, SMSBurst)
	require.NoError(t, err)
	assert.False(t, second.Allowed)
	assert.Greater(t, second.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, second.RetryAfter, time.Minute)

	// After the refill window the budget is back.
	fc.Advance(61 * time.Second)
	third, err := bucket.Allow(ctx, SMSKey, SMSRate, SMSBurst)
	require.NoError(t, err)
	assert.True(t, third.Allowed)
}

func TestLocalBucketGenericBurst(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	bucket := NewLocalBucket(fc)
	ctx := context.Background()

	for i := 0; i < GenericBurst; i++ {
		res, err := bucket.Allow(ctx, GenericKey, GenericRate, GenericBurst)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "send %d should pass", i+1)
	}

	res, err := bucket.Allow(ctx, GenericKey, GenericRate, GenericBurst)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestLocalBucketKeysAreIndependent(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	bucket := NewLocalBucket(fc)
	ctx := context.Background()

	res, err := bucket.Allow(ctx, SMSKey, SMSRate, SMSBurst)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	other, err := bucket.Allow(ctx, GenericKey, GenericRate, GenericBurst)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestLocalBucketValidation(t *testing.T) {
	bucket := NewLocalBucket(clock.NewFakeClock(time.Now()))

	_, err := bucket.Allow(context.Background(), "", 1, 1)
	assert.Error(t, err)

	_, err = bucket.Allow(context.Background(), "k", 0, 1)
	assert.Error(t, err)
}
