package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/splitnest/splitnest/internal/config"
	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/handlers"
	"github.com/splitnest/splitnest/internal/repository"
	"github.com/splitnest/splitnest/internal/services"
	xhttp "github.com/splitnest/splitnest/pkg/http"
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

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

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
	if config.Get().AppDebugMetricsAddr != "" {
		go func() {
			prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
		}()
	}

	publisher := events.NewPublisher(redisAdap, config.Get().ActivityStreamName, config.Get().ActivityStreamMaxLen)

	// repositories
	balanceRepo := repository.NewBalanceRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	requestRepo := repository.NewSettlementRequestRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// services
	locks := services.NewGroupLocker()
	balanceService := services.NewBalanceService(balanceRepo, debtRepo, expenseRepo, membershipRepo, db, locks)
	expenseService := services.NewExpenseService(expenseRepo, membershipRepo, balanceService, db, locks, publisher)
	settlementService := services.NewSettlementService(settlementRepo, summaryRepo, balanceRepo, debtRepo, membershipRepo, balanceService, db, locks, publisher)
	requestService := services.NewSettlementRequestService(requestRepo, settlementRepo, summaryRepo, balanceRepo, membershipRepo, db, locks, publisher, config.Get().RequestExpiryTTL)
	groupService := services.NewGroupService(membershipRepo, balanceRepo, debtRepo, settlementService, balanceService, db, locks)
	healthService := services.NewHealthService()

	// v1 handlers
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	requestHandler := handlers.NewSettlementRequestHandler(requestService)
	groupHandler := handlers.NewGroupHandler(groupService)
	activityHandler := handlers.NewActivityHandler(activityRepo)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterBalanceRoutes(g, balanceHandler)
	handlers.RegisterExpenseRoutes(g, expenseHandler)
	handlers.RegisterSettlementRoutes(g, settlementHandler)
	handlers.RegisterSettlementRequestRoutes(g, requestHandler)
	handlers.RegisterGroupRoutes(g, groupHandler)
	handlers.RegisterActivityRoutes(g, activityHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
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
