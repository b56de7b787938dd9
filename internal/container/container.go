package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
	"github.com/oksasatya/go-storefront/internal/infrastructure/events"
	"github.com/oksasatya/go-storefront/internal/infrastructure/kv"
	"github.com/oksasatya/go-storefront/internal/infrastructure/objectstore"
	"github.com/oksasatya/go-storefront/internal/infrastructure/search"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router auto-wires modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	store       docstore.Store
	kvStore     kv.Store
	redisClient *redis.Client
	objects     objectstore.Storage
	searchIndex *search.Elastic
	publisher   events.Publisher
	mailQueue   application.Mailer

	jwtManager *helpers.JWTManager
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config {
	if cfg == nil {
		cfg = config.Load()
	}
	return cfg
}
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }

func SetStore(s docstore.Store) { store = s }
func GetStore() docstore.Store  { return store }
func SetKV(s kv.Store)          { kvStore = s }
func GetKV() kv.Store           { return kvStore }

// SetRedis is optional; without it rate limits are disabled.
func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetObjects(s objectstore.Storage) { objects = s }
func GetObjects() objectstore.Storage  { return objects }
func SetSearch(e *search.Elastic)      { searchIndex = e }
func GetSearch() *search.Elastic       { return searchIndex }

func SetPublisher(p events.Publisher) { publisher = p }
func GetPublisher() events.Publisher {
	if publisher == nil {
		return events.Noop{}
	}
	return publisher
}

func SetMailer(m application.Mailer) { mailQueue = m }
func GetMailer() application.Mailer  { return mailQueue }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	c := GetConfig()
	jwtManager = helpers.NewJWTManager(c.JWTAccessSecret, c.JWTRefreshSecret, c.AccessTTL, c.RefreshTTL)
	return jwtManager
}
