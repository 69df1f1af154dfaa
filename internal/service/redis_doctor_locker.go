package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLockTimeout is returned when a doctor lock could not be acquired in time
var ErrLockTimeout = errors.New("timed out waiting for doctor lock")

// releaseLockScript deletes the lock only when it still holds our token.
// A lock that expired and was taken by another holder is left alone.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	// Redis key prefix for per-doctor booking locks
	RedisDoctorLockKeyPrefix = "booking:lock:doctor:"

	// Pause between SET NX attempts
	lockRetryInterval = 25 * time.Millisecond

	// Timeout for the release call, detached from the request context
	lockReleaseTimeout = 5 * time.Second
)

// RedisDoctorLocker holds per-doctor locks in Redis so several instances
// serialize writes to the same doctor.
type RedisDoctorLocker struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
	wait        time.Duration
}

// NewRedisDoctorLocker creates a locker. ttl bounds how long a crashed holder
// keeps the lock; wait bounds how long Lock retries.
func NewRedisDoctorLocker(redisClient *redis.Client, log *logrus.Logger, ttl, wait time.Duration) *RedisDoctorLocker {
	return &RedisDoctorLocker{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
		wait:        wait,
	}
}

func (l *RedisDoctorLocker) Lock(ctx context.Context, doctorID uuid.UUID) (func(), error) {
	key := RedisDoctorLockKeyPrefix + doctorID.String()
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.redisClient.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.log.Warnf("Failed to acquire lock for doctor %s: %+v", doctorID, err)
			return nil, fmt.Errorf("acquire doctor lock %s: %w", doctorID, err)
		}
		if acquired {
			break
		}

		if !time.Now().Before(deadline) {
			return nil, ErrLockTimeout
		}

		timer := time.NewTimer(lockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	l.log.Debugf("Acquired lock for doctor %s", doctorID)

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()

		released, err := releaseLockScript.Run(releaseCtx, l.redisClient, []string{key}, token).Int()
		if err != nil {
			l.log.Warnf("Failed to release lock for doctor %s: %+v", doctorID, err)
			return
		}
		if released == 0 {
			l.log.Warnf("Lock for doctor %s expired before release", doctorID)
		}
	}, nil
}
