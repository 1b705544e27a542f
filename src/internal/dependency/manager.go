package dependency

import (
	"context"
	"time"

	"account-admin-svc/src/clients"
	"account-admin-svc/src/internal/account"
	"account-admin-svc/src/internal/activity"
	"account-admin-svc/src/internal/admin"
	"account-admin-svc/src/internal/auth"
	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/middleware"
	"account-admin-svc/src/internal/password"
	"account-admin-svc/src/internal/store"
	"account-admin-svc/src/internal/store/mongostore"
	"account-admin-svc/src/internal/store/sqlstore"
	"account-admin-svc/src/internal/throttle"
	"account-admin-svc/src/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Manager struct {
	Router         *gin.Engine
	Config         *config.Configuration
	Mongodb        *clients.MongoDB
	Redis          *clients.RedisClient
	RabbitMQ       *clients.RabbitMQ
	Store          store.Store
	Limiter        throttle.Limiter
	Recorder       *activity.Recorder
	Tokens         *token.Service
	AuthMiddleware *middleware.AuthMiddleware
	AuthService    auth.Service
	AuthHandler    auth.Handler
	AccountService account.Service
	AccountHandler account.Handler
	AdminService   admin.Service
	AdminHandler   admin.Handler
}

// Connect opens the configured backends and wires every component on top of them.
// Redis and RabbitMQ are optional: without a URL the in-memory throttle and no
// activity fan-out are used.
func Connect(router *gin.Engine, cfg *config.Configuration) (*Manager, error) {
	m := &Manager{Router: router, Config: cfg}

	st, err := m.openStore()
	if err != nil {
		return nil, err
	}

	limiter := throttle.Limiter(throttle.Noop{})
	settings := throttle.Settings{
		Limit:  cfg.Security.LoginMaxAttempts,
		Window: time.Duration(cfg.Security.LoginWindowMinutes) * time.Minute,
	}
	if settings.Enabled() {
		limiter = throttle.NewMemory(settings)
		if cfg.Redis.Url != "" {
			redisClient, err := clients.NewRedisClient(&cfg.Redis)
			if err != nil {
				logrus.WithError(err).Warn("Redis unavailable, using in-memory login throttle")
			} else {
				m.Redis = redisClient
				limiter = throttle.NewRedis(redisClient.Client, settings)
			}
		}
	}

	var publisher activity.Publisher
	if cfg.Queue.RabbitMQ.Url != "" {
		rabbitMQ, err := clients.NewRabbitMQ(&cfg.Queue.RabbitMQ)
		if err != nil {
			logrus.WithError(err).Warn("RabbitMQ unavailable, activity fan-out disabled")
		} else if err := rabbitMQ.SetupExchange(); err != nil {
			logrus.WithError(err).Warn("Failed to declare activity exchange, activity fan-out disabled")
			_ = rabbitMQ.Close()
		} else {
			m.RabbitMQ = rabbitMQ
			publisher = activity.NewAMQPPublisher(rabbitMQ.Channel, &cfg.Queue.RabbitMQ)
		}
	}

	m.wire(st, limiter, publisher)
	return m, nil
}

// NewDependencyManager wires components over an already opened store.
func NewDependencyManager(router *gin.Engine, cfg *config.Configuration, st store.Store,
	limiter throttle.Limiter, publisher activity.Publisher) *Manager {
	m := &Manager{Router: router, Config: cfg}
	m.wire(st, limiter, publisher)
	return m
}

func (m *Manager) wire(st store.Store, limiter throttle.Limiter, publisher activity.Publisher) {
	cfg := m.Config
	if limiter == nil {
		limiter = throttle.Noop{}
	}

	hasher := password.NewHasher(cfg.Security.BcryptCost)
	tokens := token.NewService(
		cfg.Security.UserSecret,
		cfg.Security.AdminSecret,
		time.Duration(cfg.Security.TokenExpirationMinutes)*time.Minute,
	)
	recorder := activity.NewRecorder(publisher)

	m.Store = st
	m.Limiter = limiter
	m.Recorder = recorder
	m.Tokens = tokens
	m.AuthMiddleware = middleware.NewAuthMiddleware(tokens)

	m.AuthService = auth.NewAuthService(st, hasher, tokens, recorder, limiter)
	m.AuthHandler = auth.NewHandler(cfg, m.AuthService)
	m.AccountService = account.NewAccountService(st, recorder)
	m.AccountHandler = account.NewHandler(cfg, m.AccountService)
	m.AdminService = admin.NewAdminService(st, hasher, recorder)
	m.AdminHandler = admin.NewHandler(cfg, m.AdminService)

	logrus.WithFields(logrus.Fields{
		"throttle":  limiter.Name(),
		"publisher": recorder.PublisherName(),
	}).Info("Dependencies wired")
}

func (m *Manager) openStore() (store.Store, error) {
	cfg := m.Config
	if clients.Backend(cfg.Database.Url) == clients.BackendMongo {
		mongodb, err := clients.NewMongoDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		m.Mongodb = mongodb
		return mongostore.New(mongodb.Client, mongodb.Database), nil
	}

	db, err := clients.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}
	return sqlstore.New(db), nil
}

// Bootstrap prepares the schema and the default admin before traffic is served.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if err := m.Store.Migrate(ctx); err != nil {
		return err
	}
	return m.AdminService.EnsureDefaultAdmin(ctx, &m.Config.Bootstrap)
}

// Close releases every connection opened by Connect.
func (m *Manager) Close() {
	if m.Store != nil {
		if err := m.Store.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close store")
		}
	}
	if m.Mongodb != nil {
		if err := m.Mongodb.Close(); err != nil {
			logrus.WithError(err).Error("Failed to disconnect MongoDB")
		}
	}
	if m.Redis != nil {
		if err := m.Redis.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close Redis client")
		}
	}
	if m.RabbitMQ != nil {
		_ = m.RabbitMQ.Close()
	}
}
