package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/splitnest/splitnest/internal/config"
	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/recorder"
	"github.com/splitnest/splitnest/internal/repository"
	"github.com/splitnest/splitnest/pkg/logger"
	"github.com/splitnest/splitnest/pkg/pg"
	"github.com/splitnest/splitnest/pkg/prom"
	"github.com/splitnest/splitnest/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	consumerName := config.Get().ActivityConsumerName
	if consumerName == "" {
		consumerName = hostname
	}
	consumer, err := events.NewConsumer(redisAdap, events.ConsumerConfig{
		Stream:   config.Get().ActivityStreamName,
		Group:    config.Get().ActivityConsumerGroup,
		Consumer: consumerName,
	})
	if err != nil {
		logger.Error("failed to create stream consumer", "error", err)
		return
	}

	activityRepo := repository.NewActivityRepository(db)
	guard := recorder.NewGuard(redisAdap, recorder.DefaultGuardConfig())

	rec := recorder.New(activityRepo, guard, consumer, recorder.Config{
		WorkerCount: config.Get().ActivityWorkerCount,
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := rec.Start(); err != nil {
			logger.Error("recorder stopped", "error", err)
		}
	}()

	select {
	case <-c:
		if err := rec.Stop(10 * time.Second); err != nil {
			logger.Error("failed to stop recorder cleanly", "error", err)
		}
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
