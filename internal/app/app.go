package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"InvestxApi/cmd/db"
	"InvestxApi/internal/accrual"
	"InvestxApi/internal/middleware"
	"InvestxApi/internal/service"
	"InvestxApi/pkg/logger"
	"InvestxApi/pkg/redis"
)

const apiPrefix = "api/"

func Start() {
	gin.DisableConsoleColor()

	router := gin.Default()
	router.Use(cors.New(corsConfigFromEnv()))
	router.Use(middleware.BlockBadActorsMiddleware())

	redisAddr, ok := os.LookupEnv("REDIS_ADDR")
	if !ok {
		redisAddr = "redis:6379"
	}
	redisService := redis.NewRedisService(redisAddr, "")

	// Accrual engine over the Postgres ledger, yield events go to the
	// live feed
	feedService := service.NewTransactionFeedService(redisService)
	engine := accrual.New(accrual.NewStores(db.DB), feedService, accrual.Config{
		TermDays: termDaysFromEnv(),
	})

	scheduler := startAccrualSchedule(engine)

	authorized := router.Group("/", middleware.AuthMiddleware(redisService))
	admin := authorized.Group("/", middleware.AdminMiddleware())

	// router
	{
		router.POST(apiPrefix+"register", func(c *gin.Context) {
			service.Register(c, redisService)
		})
		router.POST(apiPrefix+"login", func(c *gin.Context) {
			service.Login(c, redisService)
		})
	}

	// authorized
	{
		authorized.POST(apiPrefix+"logout", func(c *gin.Context) {
			service.Logout(c, redisService)
		})

		authorized.GET(apiPrefix+"dashboard", service.GetDashboard)
		authorized.GET(apiPrefix+"ws/transactions", feedService.LiveTransactionsWebsocketHandler)

		// plans
		authorized.GET(apiPrefix+"plans", service.GetPlans)

		// investments
		authorized.GET(apiPrefix+"investments", service.GetInvestments)
		authorized.POST(apiPrefix+"investments", service.CreateInvestment)

		// deposits
		authorized.GET(apiPrefix+"deposits", service.GetDeposits)
		authorized.POST(apiPrefix+"deposits", service.CreateDeposit)

		// withdrawals
		authorized.GET(apiPrefix+"withdrawals", service.GetWithdrawals)
		authorized.POST(apiPrefix+"withdrawals", service.CreateWithdrawal)

		// referrals
		authorized.GET(apiPrefix+"referrals", service.GetUserReferrals)
	}

	// admin
	{
		admin.POST(apiPrefix+"admin/calculate-yields", func(c *gin.Context) {
			service.CalculateYields(c, engine)
		})
		admin.GET(apiPrefix+"admin/accrual-runs", service.GetAccrualRuns)

		admin.POST(apiPrefix+"admin/plans", service.CreatePlan)
		admin.PUT(apiPrefix+"admin/plans/:id", service.UpdatePlan)

		admin.GET(apiPrefix+"admin/deposits", service.GetPendingDeposits)
		admin.POST(apiPrefix+"admin/deposits/:id", service.ProcessDeposit)

		admin.GET(apiPrefix+"admin/withdrawals", service.GetPendingWithdrawals)
		admin.POST(apiPrefix+"admin/withdrawals/:id", service.ProcessWithdrawal)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: router.Handler(),
	}

	go func() {
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server...")

	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server Shutdown: %v", err)
	}

	<-ctx.Done()
	logger.Info("Server exiting")
}

// corsConfigFromEnv builds the CORS layer. Sessions ride an HTTP-only
// cookie, so cross-origin requests must be credentialed and the allowed
// origins must be an explicit allowlist (CORS_ORIGINS, comma separated),
// the local frontend by default.
func corsConfigFromEnv() cors.Config {
	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if raw, ok := os.LookupEnv("CORS_ORIGINS"); ok && raw != "" {
		origins := strings.Split(raw, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		config.AllowOrigins = origins
	}

	return config
}

// startAccrualSchedule runs the engine on the ACCRUAL_CRON schedule,
// daily at midnight server time by default.
func startAccrualSchedule(engine *accrual.Engine) *cron.Cron {
	schedule, ok := os.LookupEnv("ACCRUAL_CRON")
	if !ok {
		schedule = "0 0 * * *"
	}

	scheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := scheduler.AddFunc(schedule, func() {
		summary, err := engine.Run(context.Background())
		if err != nil {
			logger.Error("scheduled accrual run failed: %v", err)
			return
		}
		logger.Info("accrual run: %d processed, %d skipped, %.2f yield paid, %d bonuses",
			summary.InvestmentsProcessed, summary.InvestmentsSkipped,
			summary.TotalYieldPaid, summary.BonusesPaid)
	})
	if err != nil {
		logger.Fatal("unable to schedule accrual run: %v", err)
	}

	scheduler.Start()
	logger.Info("Accrual schedule started: %s", schedule)

	return scheduler
}

func termDaysFromEnv() int {
	raw, ok := os.LookupEnv("INVESTMENT_TERM_DAYS")
	if !ok {
		return 0
	}

	termDays, err := strconv.Atoi(raw)
	if err != nil || termDays < 0 {
		logger.Warn("invalid INVESTMENT_TERM_DAYS %q, investments will not mature", raw)
		return 0
	}

	return termDays
}
