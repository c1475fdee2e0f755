package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/core-coin/vendere/internal/config"
	"github.com/core-coin/vendere/internal/funds"
	"github.com/core-coin/vendere/internal/http_api"
	"github.com/core-coin/vendere/internal/models"
	"github.com/core-coin/vendere/internal/notificator"
	"github.com/core-coin/vendere/internal/repository"
	"github.com/core-coin/vendere/internal/vendere"
	"github.com/core-coin/vendere/pkg/logger"
	"github.com/core-coin/vendere/pkg/validation"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "vendere",
		Usage: "Vendere is a catalog-backed token sale and issuance service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.StringFlag{Name: "admin", Aliases: []string{"a"}, Usage: "Admin address"},
			&cli.StringFlag{Name: "fee-receiver", Aliases: []string{"f"}, Usage: "Fee receiver address"},
			&cli.IntFlag{Name: "fee-basis-points", Aliases: []string{"b"}, Usage: "Fee in basis points of the price"},
			&cli.StringFlag{Name: "base-uri", Usage: "Initial metadata base URI"},
			&cli.IntFlag{Name: "api-port", Usage: "API port"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode (in-memory repository)"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("admin") {
		cfg.AdminAddress = c.String("admin")
	}
	if c.IsSet("fee-receiver") {
		cfg.FeeReceiver = c.String("fee-receiver")
	}
	if c.IsSet("fee-basis-points") {
		cfg.FeeBasisPoints = int64(c.Int("fee-basis-points"))
	}
	if c.IsSet("base-uri") {
		cfg.BaseURI = c.String("base-uri")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize repository
	repo, err := newRepository(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %v", err)
	}
	defer repo.Close()

	// Initialize notificator
	var telNotif *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telNotif, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	var emailNotif *notificator.EmailNotificator
	if cfg.OpsEmail != "" {
		emailNotif = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.OpsEmail)
	}
	opsNotificator := notificator.NewNotificator(log, telNotif, emailNotif)

	// Initialize fund distributor
	distributor := funds.NewDistributor(
		validation.NormalizeAddress(cfg.FeeReceiver),
		validation.NormalizeAddress(cfg.ServiceAddress),
		cfg.FeeBasisPoints,
		log,
	)

	// Create the issuance engine
	engine, err := vendere.NewVendere(repo, distributor, opsNotificator, log, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %v", err)
	}

	// Initialize API server
	apiServer := http_api.NewHTTPServer(engine, cfg, log)

	go apiServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return apiServer.Shutdown()
}

func newRepository(cfg *config.Config, log *logger.Logger) (models.Repository, error) {
	if cfg.Development {
		log.Warn("Development mode: using in-memory repository, state will not survive restarts")
		return repository.NewMemoryDB(), nil
	}
	return repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
}
