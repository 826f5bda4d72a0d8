package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/seidelmaycon/game-api/config"
	"github.com/seidelmaycon/game-api/internal/application"
	"github.com/seidelmaycon/game-api/internal/domain/repository"
	"github.com/seidelmaycon/game-api/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg    *config.Config
	logger *logrus.Logger

	userRepo  repository.UserRepository
	eventRepo repository.GameEventRepository
	store     repository.Pinger

	jwtManager *helpers.JWTManager
	billing    application.SubscriptionLookup

	mailPub  application.JobPublisher
	esClient *elasticsearch.Client
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return config.Load()
}
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}

func SetUserRepo(r repository.UserRepository)       { userRepo = r }
func GetUserRepo() repository.UserRepository        { return userRepo }
func SetEventRepo(r repository.GameEventRepository) { eventRepo = r }
func GetEventRepo() repository.GameEventRepository  { return eventRepo }
func SetStore(p repository.Pinger)                  { store = p }
func GetStore() repository.Pinger                   { return store }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.NewJWTManager(GetConfig().JWTSecret, GetConfig().JWTTTL)
}
func SetBilling(b application.SubscriptionLookup) { billing = b }
func GetBilling() application.SubscriptionLookup  { return billing }

func SetMailPublisher(p application.JobPublisher) { mailPub = p }
func GetMailPublisher() application.JobPublisher  { return mailPub }
func SetES(c *elasticsearch.Client)               { esClient = c }
func GetES() *elasticsearch.Client                { return esClient }

// Reset clears every singleton; used between tests.
func Reset() {
	cfg, logger = nil, nil
	userRepo, eventRepo, store = nil, nil, nil
	jwtManager, billing = nil, nil
	mailPub, esClient = nil, nil
}
