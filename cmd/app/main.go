package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/blogapi/internal/blogservice"
	"github.com/sushihentaime/blogapi/internal/common"
	"github.com/sushihentaime/blogapi/internal/mailservice"
	"github.com/sushihentaime/blogapi/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	mailService *mailservice.MailService
	limiters    *common.Cache
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbURI := common.PostgresURI(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	err = common.MigrateUp(dbURI)
	if err != nil {
		logger.Error("failed to apply database migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(dbURI, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBMaxIdleTime)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	mqURI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(mqURI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = broker.DeclareRoutes(common.UserCreatedRoute)
	if err != nil {
		logger.Error("failed to declare message routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	userCache := common.NewCache(userservice.UserCacheTime, 10*time.Minute)
	tokens := userservice.NewTokenMaker(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.JWTIssuer)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(db, broker, userCache, tokens, logger),
		blogService: blogservice.NewBlogService(db),
		mailService: mailservice.NewMailService(broker, mailservice.MailConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUser,
			Password: cfg.MailPassword,
			Sender:   cfg.MailSender,
		}, logger),
		limiters: common.NewCache(cfg.RateLimitWindow, time.Minute),
	}

	err = app.mailService.SendWelcomeEmails()
	if err != nil {
		logger.Error("failed to start the welcome email consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
