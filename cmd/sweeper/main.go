package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/splitnest/splitnest/internal/config"
	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/repository"
	"github.com/splitnest/splitnest/internal/services"
	"github.com/splitnest/splitnest/pkg/logger"
	"github.com/splitnest/splitnest/pkg/pg"
	"github.com/splitnest/splitnest/pkg/redis"
)

// The sweeper expires stale settlement requests on a schedule. It is
// deliberately tiny: one cron entry calling the same operation the API
// exposes at /settlement-requests/expire.
func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("app", "sweeper").Logger()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return
	}

	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	db, err := pg.CreateReadWrite(writeConf, writeConf, false)
	if err != nil {
		log.Error().Err(err).Msg("failed connecting to pg")
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
		log.Error().Err(err).Msg("failed connecting to redis")
		return
	}

	publisher := events.NewPublisher(redisAdap, config.Get().ActivityStreamName, config.Get().ActivityStreamMaxLen)

	requestRepo := repository.NewSettlementRequestRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)

	requestService := services.NewSettlementRequestService(
		requestRepo,
		settlementRepo,
		summaryRepo,
		balanceRepo,
		membershipRepo,
		db,
		services.NewGroupLocker(),
		publisher,
		config.Get().RequestExpiryTTL,
	)

	schedule := config.Get().SweepCronSchedule
	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := requestService.ExpirePending(ctx)
		if err != nil {
			log.Error().Err(err).Msg("sweep failed")
			return
		}
		if n > 0 {
			log.Info().Int64("expired", n).Msg("expired stale settlement requests")
		}
	})
	if err != nil {
		log.Error().Err(err).Str("schedule", schedule).Msg("invalid sweep schedule")
		return
	}

	log.Info().Str("schedule", schedule).Msg("sweeper started")
	c.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	<-c.Stop().Done()
	log.Info().Msg("sweeper stopped")
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
