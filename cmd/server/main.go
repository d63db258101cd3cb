// CampaignHub - marketing campaign administration service
package main

import (
	"context"
	"fmt"
	"os"

	"campaignhub/internal/config"
	"campaignhub/internal/repository"
	"campaignhub/internal/repository/sqlite"
	"campaignhub/internal/repository/surreal"
	"campaignhub/internal/server"
	"campaignhub/internal/session"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd serves the API when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "campaignhub",
	Short: "Marketing campaign administration API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the store schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()
		logger.Info("migrations applied", zap.String("store", cfg.Store.Driver))
		return nil
	},
}

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin user with access to every shop",
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		admin, err := session.CreateAdmin(cmd.Context(), repos.Users, adminEmail, adminPassword, adminName)
		if err != nil {
			return err
		}
		logger.Info("admin created", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
		return nil
	},
}

var forceInit bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the effective configuration to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !forceInit {
			return fmt.Errorf("config file %s already exists, use --force to overwrite", configPath)
		}
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		logger.Info("config written", zap.String("path", configPath))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML configuration file")

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (min 6 characters)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	initConfigCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing config file")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	repos, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := createDefaultAdmin(ctx, repos.Users); err != nil {
		logger.Warn("could not create default admin", zap.Error(err))
	}

	sessions := session.NewProvider(repos.Users, session.Options{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.TokenTTL(),
		Issuer: cfg.JWT.Issuer,
	}, logger)

	srv := server.New(cfg, repos, sessions, logger)
	return srv.Run()
}

// newLogger builds the production logger, at debug level in debug mode
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		level = zapcore.DebugLevel
		zcfg.Development = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// openStore connects the configured backend and applies migrations
func openStore(ctx context.Context) (*repository.Repositories, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverSurrealDB:
		sc := cfg.Store.SurrealDB
		store, err := surreal.Open(ctx, surreal.Config{
			URL:       sc.URL,
			Namespace: sc.Namespace,
			Database:  sc.Database,
			Username:  sc.Username,
			Password:  sc.Password,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		closeStore := func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Warn("failed to close store", zap.Error(err))
			}
		}
		if err := store.Migrate(ctx); err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return surreal.NewRepositories(store), closeStore, nil

	default:
		db, err := sqlite.New(cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closeStore := func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}
		if err := db.Migrate(); err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("database initialized", zap.String("path", cfg.GetDatabasePath()))
		return sqlite.NewRepositories(db), closeStore, nil
	}
}

// createDefaultAdmin creates the configured admin if no users exist. Without
// a configured password a random one is generated and logged once.
func createDefaultAdmin(ctx context.Context, users repository.UserRepository) error {
	password := cfg.Admin.Password
	generated := password == ""
	if generated {
		password = uuid.NewString()
	}

	created, err := session.EnsureAdmin(ctx, users, cfg.Admin.Email, password, cfg.Admin.Name)
	if err != nil || !created {
		return err
	}

	fields := []zap.Field{zap.String("email", cfg.Admin.Email)}
	if generated {
		fields = append(fields, zap.String("password", password))
	}
	logger.Warn("default admin user created, change this password", fields...)
	return nil
}
