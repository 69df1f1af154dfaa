package bootstrap

import (
	"fmt"
	"os"
	"sync"

	"go-medical-booking/config"
	"go-medical-booking/internal/delivery/cli"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/infrastructure/cache"
	"go-medical-booking/internal/infrastructure/database"
	"go-medical-booking/internal/infrastructure/messaging"
	pgRepo "go-medical-booking/internal/repository"
	"go-medical-booking/internal/repository/memory"
	"go-medical-booking/internal/service"
	"go-medical-booking/internal/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application. Connections are opened on
// first use, so a command only touches the infrastructure it needs.
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	RabbitMQ    *amqp.Connection

	localLocker *service.LocalDoctorLocker

	servicesOnce sync.Once
	services     *cli.Services
	servicesErr  error
}

// stores groups the persistence ports selected by BOOKING_STORE_DRIVER
type stores struct {
	appointments repository.AppointmentStore
	users        repository.UserDirectory
	backRefs     repository.BackReferenceIndex
	events       repository.AppointmentEventRepository
}

// New loads configuration and sets up logging
func New() (*App, error) {
	log := setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", cfg.App.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.Debugf("Configuration loaded: env=%s, store=%s, lock=%s, sinks=%v",
		cfg.App.Env, cfg.Booking.StoreDriver, cfg.Booking.LockDriver, cfg.Booking.EventSinks)

	return &App{Config: cfg, Log: log}, nil
}

// setupLogger configures the logrus logger
func setupLogger() *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}

// Services builds the use cases once
func (app *App) Services() (*cli.Services, error) {
	app.servicesOnce.Do(func() {
		app.services, app.servicesErr = app.initializeServices()
	})
	return app.services, app.servicesErr
}

func (app *App) initializeServices() (*cli.Services, error) {
	cfg := app.Config

	st, err := app.initializeStores()
	if err != nil {
		return nil, err
	}

	locker, err := app.initializeLocker()
	if err != nil {
		return nil, err
	}

	emitter, err := app.initializeEmitter(st.events)
	if err != nil {
		return nil, err
	}

	calendar := usecase.NewAvailabilityCalendar(cfg.Booking.Location)

	return &cli.Services{
		Appointments: usecase.NewAppointmentLifecycle(app.Log, st.appointments, st.users, st.backRefs, locker, emitter, calendar, nil),
		Availability: usecase.NewAvailabilityQuery(app.Log, st.appointments, st.users, calendar),
		Doctors:      usecase.NewDoctorDirectory(app.Log, st.users),
	}, nil
}

func (app *App) initializeStores() (*stores, error) {
	switch app.Config.Booking.StoreDriver {
	case config.StoreDriverMemory:
		users := memory.NewUserDirectory()
		return &stores{
			appointments: memory.NewAppointmentStore(),
			users:        users,
			backRefs:     users,
			events:       memory.NewAppointmentEventRepository(),
		}, nil
	default:
		db, err := app.database()
		if err != nil {
			return nil, err
		}
		users := pgRepo.NewUserDirectory(db)
		return &stores{
			appointments: pgRepo.NewAppointmentRepository(db),
			users:        users,
			backRefs:     users,
			events:       pgRepo.NewAppointmentEventRepository(db),
		}, nil
	}
}

func (app *App) initializeLocker() (service.DoctorLocker, error) {
	booking := app.Config.Booking

	switch booking.LockDriver {
	case config.LockDriverRedis:
		if app.RedisClient == nil {
			client, err := cache.NewRedisClient(app.Config.Redis, app.Log)
			if err != nil {
				return nil, err
			}
			app.RedisClient = client
		}
		return service.NewRedisDoctorLocker(app.RedisClient, app.Log, booking.LockTTL, booking.LockWait), nil
	case config.LockDriverNone:
		return service.NoopDoctorLocker{}, nil
	default:
		app.localLocker = service.NewLocalDoctorLocker(app.Log)
		return app.localLocker, nil
	}
}

func (app *App) initializeEmitter(eventRepo repository.AppointmentEventRepository) (service.EventEmitter, error) {
	booking := app.Config.Booking
	var sinks []service.EventEmitter

	if booking.HasEventSink(config.EventSinkLog) {
		sinks = append(sinks, service.NewLogEventSink(app.Log))
	}
	if booking.HasEventSink(config.EventSinkStore) {
		sinks = append(sinks, service.NewEventLogSink(app.Log, eventRepo))
	}
	if booking.HasEventSink(config.EventSinkRabbitMQ) {
		conn, err := app.rabbitMQ()
		if err != nil {
			return nil, err
		}
		publisher, err := service.NewRabbitMQEventPublisher(conn, app.Log, app.Config.RabbitMQ.Exchange)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, publisher)
	}

	return service.NewMultiEmitter(app.Log, sinks...), nil
}

// Migrator opens a migration runner on its own connection
func (app *App) Migrator() (cli.Migrator, error) {
	migrator, err := database.NewMigrator(app.Config.DB, app.Log)
	if err != nil {
		return nil, err
	}
	return migrator, nil
}

// EventListener consumes the event queue into bus
func (app *App) EventListener(bus *service.EventBus) (cli.EventListener, error) {
	conn, err := app.rabbitMQ()
	if err != nil {
		return nil, err
	}

	consumer, err := service.NewEventConsumer(conn, app.Log, bus, app.Config.RabbitMQ.Exchange, app.Config.RabbitMQ.Queue)
	if err != nil {
		return nil, err
	}
	return consumer, nil
}

func (app *App) database() (*gorm.DB, error) {
	if app.DB != nil {
		return app.DB, nil
	}
	db, err := database.NewPostgresConnection(app.Config.DB, app.Config.App.Env, app.Log)
	if err != nil {
		return nil, err
	}
	app.DB = db
	return db, nil
}

func (app *App) rabbitMQ() (*amqp.Connection, error) {
	if app.RabbitMQ != nil {
		return app.RabbitMQ, nil
	}
	conn, err := messaging.NewRabbitMQConnection(app.Config.RabbitMQ, app.Log)
	if err != nil {
		return nil, err
	}
	app.RabbitMQ = conn
	return conn, nil
}

// Close releases every connection that was opened
func (app *App) Close() {
	if app.localLocker != nil {
		app.localLocker.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	// Close RabbitMQ connection
	if app.RabbitMQ != nil {
		app.RabbitMQ.Close()
	}
}
