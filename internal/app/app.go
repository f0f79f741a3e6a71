package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/andy/freelancedesk/internal/auth"
	"github.com/andy/freelancedesk/internal/campaign"
	"github.com/andy/freelancedesk/internal/config"
	"github.com/andy/freelancedesk/internal/crypto"
	"github.com/andy/freelancedesk/internal/db"
	"github.com/andy/freelancedesk/internal/repository"
	"github.com/andy/freelancedesk/internal/service"
	"github.com/andy/freelancedesk/internal/session"
	"github.com/andy/freelancedesk/internal/store"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Log    *logrus.Logger

	Session  *session.Manager
	Store    *store.Store
	Campaign *campaign.Store
	Auth     *auth.Service

	// Services
	InvoiceService service.InvoiceService
	ReportService  service.ReportService

	logFile io.Closer
	redis   *redis.Client
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Getting encryption key from keyring
// 3. Opening database and running migrations
// 4. Creating gateways, stores and services
// 5. Restoring the saved session, which loads the stores
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(ctx, cfg, crypto.NewKeyring())
}

// NewWithConfig creates an App with a provided config and keyring (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config, keyring crypto.Keyring) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	log, logFile, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log, logFile: logFile}

	password, err := keyring.Get(crypto.DBKeyName)
	if err != nil {
		if !errors.Is(err, crypto.ErrSecretNotFound) {
			a.Close()
			return nil, fmt.Errorf("failed to read encryption key: %w", err)
		}
		// No key exists, prompt user to set one
		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to set password: %w", err)
		}
		if err := keyring.Set(crypto.DBKeyName, password); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = database

	if err := database.RunMigrations(); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	gateways := repository.Gateways{
		Clients:         repository.NewClientRepo(database),
		Projects:        repository.NewProjectRepo(database),
		Payments:        repository.NewPaymentRepo(database),
		PaymentMethods:  repository.NewPaymentMethodRepo(database),
		BusinessProfile: repository.NewBusinessProfileRepo(database),
	}
	campaignGateways := repository.CampaignGateways{
		Panels:      repository.NewPanelRepo(database),
		PanelUsers:  repository.NewPanelUserRepo(database),
		Credentials: repository.NewCredentialRepo(database),
		Reports:     repository.NewCampaignReportRepo(database),
		Audit:       repository.NewAuditLogRepo(database),
	}

	otps, err := a.otpStore(ctx, database)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Session = session.NewManager(keyring, log)
	a.Store = store.New(gateways, log)
	a.Campaign = campaign.New(campaignGateways, log)
	a.Auth = auth.NewService(
		repository.NewProfileRepo(database),
		otps,
		auth.NewWhatsAppSender(cfg.WhatsApp.BaseURL, cfg.WhatsApp.InstanceID, cfg.WhatsApp.AccessToken),
		log,
		auth.Options{
			DefaultRegion:        cfg.Auth.DefaultRegion,
			TTL:                  cfg.Auth.OTPTTL,
			SyntheticEmailDomain: cfg.Auth.SyntheticEmailDomain,
		},
	)
	a.InvoiceService = service.NewInvoiceService(a.Store, cfg.Invoice, cfg.Business, log)
	a.ReportService = service.NewReportService(a.Store, log)

	if err := a.Store.Bind(ctx, a.Session); err != nil {
		log.WithError(err).Warn("initial load failed")
	}
	if err := a.Campaign.Bind(ctx, a.Session); err != nil {
		log.WithError(err).Warn("initial campaign load failed")
	}
	// A failed restore leaves the app signed out; the stores already logged load errors.
	if err := a.Session.Restore(ctx); err != nil {
		log.WithError(err).Debug("session restore finished with errors")
	}

	return a, nil
}

func (a *App) otpStore(ctx context.Context, database *db.DB) (repository.OTPRepository, error) {
	if a.Config.Auth.OTPStore != config.OTPStoreRedis {
		return repository.NewOTPRepo(database), nil
	}
	rdb, err := auth.DialRedis(ctx, a.Config.Auth.RedisAddr)
	if err != nil {
		return nil, err
	}
	a.redis = rdb
	return auth.NewRedisOTPStore(rdb), nil
}

// NewLogger builds the application logger. Output goes to the log file so the TUI screen stays
// clean; stderr is used when the file cannot be opened.
func NewLogger(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return log, nil, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.WithError(err).Warn("cannot open log file, logging to stderr")
		return log, nil, nil
	}
	log.SetOutput(f)
	return log, f, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Campaign != nil {
		a.Campaign.Close()
	}
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your clients, projects and payments will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()
	return string(password), nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}
