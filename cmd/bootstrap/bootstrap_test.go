package bootstrap

import (
	"context"
	"io"
	"testing"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(booking config.BookingConfig) *App {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &App{
		Config: &config.Config{Booking: booking},
		Log:    log,
	}
}

func TestServices_MemoryStore(t *testing.T) {
	app := newTestApp(config.BookingConfig{
		Location:    time.UTC,
		LockDriver:  config.LockDriverLocal,
		StoreDriver: config.StoreDriverMemory,
		EventSinks:  []string{config.EventSinkLog, config.EventSinkStore},
	})
	defer app.Close()

	services, err := app.Services()
	require.NoError(t, err)
	require.NotNil(t, services.Appointments)
	require.NotNil(t, services.Availability)
	require.NotNil(t, services.Doctors)
	require.NotNil(t, app.localLocker)

	again, err := app.Services()
	require.NoError(t, err)
	assert.Same(t, services, again)

	doctors, err := services.Doctors.Search(context.Background(), &dto.SearchDoctorsRequest{})
	require.NoError(t, err)
	assert.Empty(t, doctors.Doctors)
}

func TestServices_RedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)

	app := newTestApp(config.BookingConfig{
		Location:    time.UTC,
		LockDriver:  config.LockDriverRedis,
		LockTTL:     time.Second,
		LockWait:    time.Second,
		StoreDriver: config.StoreDriverMemory,
	})
	app.Config.Redis = config.RedisConfig{Host: mr.Host(), Port: mr.Port()}
	defer app.Close()

	locker, err := app.initializeLocker()
	require.NoError(t, err)
	assert.IsType(t, &service.RedisDoctorLocker{}, locker)
	assert.NotNil(t, app.RedisClient)
}

func TestServices_NoopLocker(t *testing.T) {
	app := newTestApp(config.BookingConfig{LockDriver: config.LockDriverNone})

	locker, err := app.initializeLocker()
	require.NoError(t, err)
	assert.IsType(t, service.NoopDoctorLocker{}, locker)
}

func TestServices_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	app := newTestApp(config.BookingConfig{
		Location:    time.UTC,
		LockDriver:  config.LockDriverRedis,
		StoreDriver: config.StoreDriverMemory,
	})
	app.Config.Redis = config.RedisConfig{Host: host, Port: port}

	_, err := app.Services()
	assert.ErrorContains(t, err, "failed to connect to Redis")

	// The failure is remembered rather than retried
	_, again := app.Services()
	assert.Equal(t, err, again)
}
