package app

import (
	"fmt"

	"github.com/cmeetit/cmeetit/internal/clock"
	"github.com/cmeetit/cmeetit/internal/config"
	"github.com/cmeetit/cmeetit/internal/db"
	"github.com/cmeetit/cmeetit/internal/portfolio"
	"github.com/cmeetit/cmeetit/internal/repository"
	"github.com/cmeetit/cmeetit/internal/service"
	"github.com/cmeetit/cmeetit/internal/service/payment"
	"github.com/cmeetit/cmeetit/internal/validation"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Clock             clock.Clock
	AuthService       *service.AuthService
	GoalService       *service.GoalService
	SettlementService *service.SettlementService
	PaymentGateway    payment.Gateway
}

// New wires the app against the system clock.
func New(cfg *config.Config) (*App, error) {
	return NewWithClock(cfg, clock.NewSystem(cfg.Timezone))
}

// NewWithClock wires the app against clk. The CLI uses it to pin today.
func NewWithClock(cfg *config.Config, clk clock.Clock) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	goalRepository := repository.NewGoalRepository(database)
	settlementRepository := repository.NewSettlementRepository(database)

	// Initialize payment gateway based on config
	paymentGateway, err := payment.NewGateway(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize payment gateway: %v", err)
	}

	// Services
	policy := portfolio.Policy{
		MaxActiveGoals:   cfg.MaxActiveGoals,
		DeleteWindowDays: cfg.DeleteWindowDays,
	}
	rules := validation.GoalRules{
		MinCommitment:    cfg.MinCommitment,
		MaxCommitment:    cfg.MaxCommitment,
		MaxStartLeadDays: cfg.MaxStartLeadDays,
		MaxDurationDays:  cfg.MaxDurationDays,
	}

	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	goalService := service.NewGoalService(goalRepository, clk, policy, rules)
	settlementService := service.NewSettlementService(
		goalService,
		goalRepository,
		settlementRepository,
		paymentGateway,
		cfg.SettlementCurrency,
	)

	return &App{
		Cfg:               cfg,
		DB:                database,
		Clock:             clk,
		AuthService:       authService,
		GoalService:       goalService,
		SettlementService: settlementService,
		PaymentGateway:    paymentGateway,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
