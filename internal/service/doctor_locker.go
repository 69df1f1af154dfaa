package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DoctorLocker serializes check-then-write sections per doctor.
// The returned unlock func must be called exactly once.
type DoctorLocker interface {
	Lock(ctx context.Context, doctorID uuid.UUID) (func(), error)
}

// =============================================================================
// Constants
// =============================================================================

const (
	// Interval for cleaning up stale doctor mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// =============================================================================
// LocalDoctorLocker
// =============================================================================

// LocalDoctorLocker keeps one mutex per doctor inside the process.
// It is enough for a single instance. Run several instances with RedisDoctorLocker.
type LocalDoctorLocker struct {
	log *logrus.Logger

	doctorMu sync.Map // map[uuid.UUID]*mutexWithTimestamp

	staleAfter time.Duration

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp is a context-aware mutex that tracks usage for cleanup
type mutexWithTimestamp struct {
	sem      chan struct{}
	lastUsed atomic.Int64 // Unix nano timestamp
}

func newMutexWithTimestamp() *mutexWithTimestamp {
	return &mutexWithTimestamp{sem: make(chan struct{}, 1)}
}

func (m *mutexWithTimestamp) tryLock() bool {
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (m *mutexWithTimestamp) unlock() {
	<-m.sem
}

// NewLocalDoctorLocker creates a LocalDoctorLocker.
// Starts background goroutine for mutex cleanup.
// Call Stop() during graceful shutdown.
func NewLocalDoctorLocker(log *logrus.Logger) *LocalDoctorLocker {
	l := &LocalDoctorLocker{
		log:        log,
		staleAfter: mutexStaleThreshold,
		stopChan:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupMutexMapLoop(mutexCleanupInterval)

	return l
}

// Lock blocks until the doctor's mutex is held or ctx is done
func (l *LocalDoctorLocker) Lock(ctx context.Context, doctorID uuid.UUID) (func(), error) {
	for {
		mt := l.getDoctorMutex(doctorID)

		select {
		case mt.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		// Cleanup may have evicted this mutex between load and lock.
		// Holding an evicted mutex would not exclude newcomers, so retry.
		if current, ok := l.doctorMu.Load(doctorID); ok && current == mt {
			mt.lastUsed.Store(time.Now().UnixNano())
			var once sync.Once
			return func() {
				once.Do(func() {
					mt.lastUsed.Store(time.Now().UnixNano())
					mt.unlock()
				})
			}, nil
		}
		mt.unlock()
	}
}

// Stop gracefully shuts down the cleanup goroutine.
// Safe to call multiple times.
func (l *LocalDoctorLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("LocalDoctorLocker stopped")
	}
}

// getDoctorMutex returns mutex for a specific doctor ID
func (l *LocalDoctorLocker) getDoctorMutex(doctorID uuid.UUID) *mutexWithTimestamp {
	fresh := newMutexWithTimestamp()
	fresh.lastUsed.Store(time.Now().UnixNano())
	mt, _ := l.doctorMu.LoadOrStore(doctorID, fresh)
	return mt.(*mutexWithTimestamp)
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (l *LocalDoctorLocker) cleanupMutexMapLoop(interval time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			l.log.Debug("Doctor mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			l.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes. lastUsed is checked while
// holding the mutex so a concurrent Lock cannot slip in between.
func (l *LocalDoctorLocker) cleanupStaleMutexes() int {
	cutoff := time.Now().Add(-l.staleAfter).UnixNano()
	var cleaned int

	l.doctorMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.tryLock() {
			if mt.lastUsed.Load() < cutoff {
				l.doctorMu.Delete(key)
				cleaned++
			}
			mt.unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale doctor mutexes", cleaned)
	}
	return cleaned
}

// =============================================================================
// NoopDoctorLocker
// =============================================================================

// NoopDoctorLocker takes no lock. The store's unique index is the only guard.
type NoopDoctorLocker struct{}

func (NoopDoctorLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}
