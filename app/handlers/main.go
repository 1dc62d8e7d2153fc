package main

import (
	"fmt"
	"os"

	cfgPkg "github.com/citypress/account-service/app/config"
	"github.com/citypress/account-service/app/logger"
	"github.com/citypress/account-service/app/mailer"
	"github.com/citypress/account-service/app/services"
	"github.com/citypress/account-service/app/store"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load .env file (if it exists)
	cfgPkg.Load()

	if err := validateRequiredEnv(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("required environment variables missing")
	}

	// Build connection string from individual components
	dbUser := cfgPkg.GetString("POSTGRES_USER", "postgres")
	dbPassword := cfgPkg.GetString("POSTGRES_PASSWORD", "postgres")
	dbHost := cfgPkg.GetString("POSTGRES_HOST", "postgres") // "postgres" in Docker, "localhost" locally
	dbPort := cfgPkg.GetString("POSTGRES_PORT", "5432")
	dbName := cfgPkg.GetString("POSTGRES_DB", "newspaper")
	dbSSLMode := cfgPkg.GetString("POSTGRES_SSLMODE", "disable")

	dbAddr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)

	cfg := config{
		addr: cfgPkg.GetString("ADDR", ":8080"),
		db: dbConfig{
			addr:         dbAddr,
			maxOpenConns: cfgPkg.GetInt("DB_MAX_OPEN_CONNS", 30),
			maxIdleConns: cfgPkg.GetInt("DB_MAX_IDLE_CONNS", 30),
			maxIdleTime:  cfgPkg.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
	}

	logger.Logger.Info().
		Str("host", dbHost).
		Str("port", dbPort).
		Str("database", dbName).
		Str("sslmode", dbSSLMode).
		Msg("connecting to postgres")

	db, err := cfgPkg.NewDB(
		cfg.db.addr,
		cfg.db.maxOpenConns,
		cfg.db.maxIdleConns,
		cfg.db.maxIdleTime,
	)

	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	logger.Logger.Info().
		Str("host", dbHost).
		Str("database", dbName).
		Msg("postgres connection pool established")

	st := store.NewStorage(db)

	redisAddr := cfgPkg.GetString("REDIS_ADDR", "localhost:6379")
	redisDB := cfgPkg.GetInt("REDIS_DB", 0)

	logger.Logger.Info().
		Str("addr", redisAddr).
		Int("db", redisDB).
		Msg("connecting to redis")

	redisClient, err := cfgPkg.NewRedisClient()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	logger.Logger.Info().
		Str("addr", redisAddr).
		Int("db", redisDB).
		Msg("redis connection established")

	emailCfg := cfgPkg.LoadEmailConfig()

	app := &application{
		config:      cfg,
		store:       st,
		redisClient: redisClient,
		db:          db,
	}

	// RabbitMQ is only dialed when outgoing mail leaves through the broker.
	var amqpCh mailer.AMQPChannel
	if emailCfg.Transport == "amqp" {
		rabbitURL := cfgPkg.GetString("RABBITMQ_URL", "")
		if rabbitURL == "" {
			logger.Logger.Fatal().Msg("RABBITMQ_URL is required when EMAIL_TRANSPORT=amqp")
		}

		logger.Logger.Info().Str("url", rabbitURL).Msg("connecting to RabbitMQ")

		rabbitConn, rabbitCh, err := cfgPkg.NewRabbitMQConnection()
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rabbitConn.Close()
		defer rabbitCh.Close()

		logger.Logger.Info().Msg("RabbitMQ connection established")

		amqpCh = rabbitCh
		app.rabbitConn = rabbitConn
		app.rabbitCh = rabbitCh
		app.closeRabbit = func() {
			rabbitCh.Close()
			rabbitConn.Close()
		}
	}

	sender, err := mailer.NewSender(emailCfg, amqpCh)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize mail sender")
	}
	logger.Logger.Info().Str("transport", sender.TransportName()).Msg("mail sender ready")

	app.accountService = services.NewAccountService(st, sender, emailCfg.BaseURL)
	app.verificationService = services.NewVerificationService(st)
	app.passwordResetService = services.NewPasswordResetService(st, sender, emailCfg.BaseURL)
	app.adminService = services.NewAdminService(st)

	mux := app.mount()

	// Start server with graceful shutdown
	if err := app.runWithGracefulShutdown(mux, db, redisClient); err != nil {
		logger.Logger.Fatal().Err(err).Msg("server error")
	}
}

func validateRequiredEnv() error {
	if os.Getenv("SESSION_SECRET") == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	return nil
}
