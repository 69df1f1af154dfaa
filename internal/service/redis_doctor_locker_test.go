package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisDoctorLocker_AcquireAndRelease(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisDoctorLocker(client, newTestLogger(), 10*time.Second, 50*time.Millisecond)
	doctorID := uuid.New()
	key := RedisDoctorLockKeyPrefix + doctorID.String()

	unlock, err := locker.Lock(context.Background(), doctorID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Second, mr.TTL(key))

	unlock()
	assert.False(t, mr.Exists(key))
}

func TestRedisDoctorLocker_TimesOutWhileHeld(t *testing.T) {
	_, client := newTestRedis(t)
	locker := NewRedisDoctorLocker(client, newTestLogger(), 10*time.Second, 60*time.Millisecond)
	doctorID := uuid.New()

	unlock, err := locker.Lock(context.Background(), doctorID)
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(context.Background(), doctorID)
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedisDoctorLocker_AcquiresAfterRelease(t *testing.T) {
	_, client := newTestRedis(t)
	locker := NewRedisDoctorLocker(client, newTestLogger(), 10*time.Second, time.Second)
	doctorID := uuid.New()

	unlock, err := locker.Lock(context.Background(), doctorID)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		unlock()
	}()

	second, err := locker.Lock(context.Background(), doctorID)
	require.NoError(t, err)
	second()
}

func TestRedisDoctorLocker_DoesNotReleaseForeignLock(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisDoctorLocker(client, newTestLogger(), time.Second, 50*time.Millisecond)
	doctorID := uuid.New()
	key := RedisDoctorLockKeyPrefix + doctorID.String()

	unlock, err := locker.Lock(context.Background(), doctorID)
	require.NoError(t, err)

	// Lock expires and another holder takes it
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(key, "someone-else"))

	unlock()
	value, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestRedisDoctorLocker_ReturnsStoreErrors(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisDoctorLocker(client, newTestLogger(), time.Second, 50*time.Millisecond)
	mr.Close()

	_, err := locker.Lock(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}
