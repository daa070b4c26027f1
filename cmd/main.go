package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/internal/repository"
	"github.com/WennovateHQ/teachgage-survey/internal/service"
	"github.com/WennovateHQ/teachgage-survey/pkg/closer"
	"github.com/WennovateHQ/teachgage-survey/pkg/config"
	"github.com/WennovateHQ/teachgage-survey/pkg/health"
	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
	"github.com/WennovateHQ/teachgage-survey/pkg/retrier"
	"github.com/WennovateHQ/teachgage-survey/pkg/transport/casher"
	"github.com/WennovateHQ/teachgage-survey/pkg/transport/consumer"
	"github.com/WennovateHQ/teachgage-survey/pkg/transport/invites"
	"github.com/WennovateHQ/teachgage-survey/pkg/transport/listener"
	"github.com/WennovateHQ/teachgage-survey/pkg/transport/publisher"
)

const EVENT_CHAN_CAPACITY = 100

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{})
	case "sqlite", "":
		dsn := cfg.Database.DSN
		if dsn == "" {
			dsn = "surveys.db"
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func main() {
	logCfg := logger.Config{
		LogFile:   "app.log",
		LogLevel:  "debug",
		AppName:   "survey-service",
		AddCaller: true,
	}

	if err := logger.Init(logCfg); err != nil {
		panic(err)
	}

	defer logger.Sync()

	logger := logger.Get()

	// .env is optional; config.yaml is the source of truth
	_ = godotenv.Load()

	cfg, err := config.Init("config.yaml")
	if err != nil {
		logger.Error("error init config",
			zap.String("path", "config.yaml"),
			zap.Error(err))
		return
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("error open database", zap.Error(err))
		return
	}

	if err = repository.Migrate(db); err != nil {
		logger.Error("error migrate database", zap.Error(err))
		return
	}

	redisClient, err := retrier.Connect(3, 5, func() (*redis.Client, error) {
		client := redis.NewClient(&redis.Options{Addr: cfg.Urls.Redis})
		if err := client.Ping(context.Background()).Err(); err != nil {
			client.Close()
			return nil, err
		}
		return client, nil
	})
	if err != nil {
		logger.Error("error connect to redis",
			zap.String("url", cfg.Urls.Redis),
			zap.Error(err))
		return
	}

	// One connection for publishing, one for consuming
	rabbitConns, err := retrier.MultiConnects(2, func() (*amqp.Connection, error) {
		return amqp.Dial(cfg.Urls.Rabbitmq)
	}, &retrier.RetrierOpts{Count: 3, Interval: 5})
	if err != nil {
		logger.Error("error connect to rabbitmq",
			zap.String("url", cfg.Urls.Rabbitmq),
			zap.Error(err))
		return
	}

	pub, err := publisher.Init(cfg, logger, rabbitConns[0])
	if err != nil {
		logger.Error("error init publisher", zap.Error(err))
		return
	}

	cons, err := consumer.Init(cfg, logger, rabbitConns[1])
	if err != nil {
		logger.Error("error init consumer", zap.Error(err))
		return
	}

	cash := casher.Init(redisClient, logger)
	repo := repository.Init(db, logger)
	store := repository.InitResponseStore(db, logger)
	inviteSource := invites.Init(redisClient, logger)

	svc := service.Init(
		repo,
		store,
		pub,
		cash,
		inviteSource,
		nil, // wall clock
		time.Duration(cfg.CashTimeoutSeconds)*time.Second,
	)

	requestTypes := []string{
		cfg.Reqs.CreateSurveyRequestType,
		cfg.Reqs.AddQuestionRequestType,
		cfg.Reqs.RemoveQuestionRequestType,
		cfg.Reqs.ReorderRequestType,
		cfg.Reqs.TransitionRequestType,
		cfg.Reqs.DeleteSurveyRequestType,
		cfg.Reqs.SubmitResponseRequestType,
	}
	for _, reqType := range requestTypes {
		if err := cons.Subscribe(cfg.Exchange.Request, reqType, cfg.Queue.Request); err != nil {
			logger.Error("error subscribe to request type",
				zap.String("request_type", reqType),
				zap.Error(err))
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eventChan := make(chan entity.Event, EVENT_CHAN_CAPACITY)
	list := listener.Init(eventChan, logger, cfg, svc)

	checker := health.NewHealthChecker(logger, cash, pub, cons)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		cons.ConsumeMessages(eventChan)
		return nil
	})

	group.Go(func() error {
		list.Listen(groupCtx)
		return nil
	})

	group.Go(func() error {
		checker.StartHealthCheckServer(cfg.HealthPort)
		return nil
	})

	logger.Info("survey service started")

	<-groupCtx.Done()

	closers := closer.NewCloserGroup(cons, pub, cash)
	if err := closers.Close(); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}

	logger.Info("survey service stopped")
}
