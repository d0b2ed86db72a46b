package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stresssense/stresssense/internal/ai"
	"github.com/stresssense/stresssense/internal/api"
	"github.com/stresssense/stresssense/internal/cache"
	"github.com/stresssense/stresssense/internal/db"
	"github.com/stresssense/stresssense/internal/middleware"
	"github.com/stresssense/stresssense/internal/models"
	"github.com/stresssense/stresssense/internal/scheduler"
	"github.com/stresssense/stresssense/internal/services"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stresssense",
		Short: "Employee stress and engagement survey platform",
	}

	serve := serveCmd()
	root.AddCommand(serve, migrateCmd(), seedCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server and schedule runner",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "stresssense.db", "SQLite database path")
	f.String("jwt-secret", "", "HMAC secret for auth tokens")
	f.String("redis-addr", "", "Redis address for the analytics cache (empty = disabled)")
	f.String("llm-url", "", "OpenAI-compatible API base URL for feedback summaries (empty = disabled)")
	f.String("llm-key", "", "API key for the summary LLM")
	f.String("llm-model", "gpt-4o-mini", "Summary LLM model name")
	f.StringSlice("cors-origins", []string{"http://localhost:3000"}, "Allowed CORS origins")
	f.Duration("scheduler-interval", time.Hour, "How often due schedules are evaluated")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd)
			v := viperForCmd(cmd)
			dbh, err := openDB(v.GetString("db"))
			if err != nil {
				return err
			}
			return dbh.Close()
		},
	}
	f := cmd.Flags()
	f.String("db", "stresssense.db", "SQLite database path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo org with a sample survey",
		RunE:  runSeed,
	}
	f := cmd.Flags()
	f.String("db", "stresssense.db", "SQLite database path")
	f.String("email", "admin@demo.local", "Demo admin email")
	f.String("password", "", "Demo admin password (required)")
	f.String("org", "Demo Org", "Demo org name")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("STRESSSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("stresssense")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/stresssense")
	v.AddConfigPath("/etc/stresssense")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func openDB(path string) (*sql.DB, error) {
	dbh, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(dbh); err != nil {
		dbh.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return dbh, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	dbh, err := openDB(v.GetString("db"))
	if err != nil {
		return err
	}
	defer dbh.Close()

	store, err := db.NewSQLiteStore(dbh)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	var summaryCache services.SummaryCache
	if addr := v.GetString("redis-addr"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		summaryCache = cache.NewSummaryCache(client)
		slog.Info("analytics cache enabled", "redis_addr", addr)
	}

	var summarizer services.Summarizer
	if url := v.GetString("llm-url"); url != "" {
		summarizer = ai.New(url, v.GetString("llm-key"), v.GetString("llm-model"))
		slog.Info("feedback summarizer enabled", "llm_url", url, "model", v.GetString("llm-model"))
	}

	auth := middleware.NewAuthenticator(v.GetString("jwt-secret"))
	scheduleSvc := services.NewScheduleService(store)
	server := api.NewServer(api.ServerConfig{
		Authenticator:  auth,
		Auth:           services.NewAuthService(store, auth.SignToken),
		Surveys:        services.NewSurveyService(store),
		Responses:      services.NewResponseService(store),
		Analytics:      services.NewAnalyticsService(store, summaryCache),
		Schedules:      scheduleSvc,
		Feedback:       services.NewFeedbackService(store, summarizer),
		AllowedOrigins: v.GetStringSlice("cors-origins"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := scheduler.New(scheduleSvc, v.GetDuration("scheduler-interval"))
	go runner.Run(ctx)

	addr := v.GetString("addr")
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	dbh, err := openDB(v.GetString("db"))
	if err != nil {
		return err
	}
	defer dbh.Close()

	store, err := db.NewSQLiteStore(dbh)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	auth := middleware.NewAuthenticator(v.GetString("jwt-secret"))
	authSvc := services.NewAuthService(store, auth.SignToken)
	res, err := authSvc.Register(v.GetString("email"), v.GetString("password"), v.GetString("org"))
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	surveySvc := services.NewSurveyService(store)
	sv, err := surveySvc.CreateSurvey(res.OrgID, services.CreateSurveyInput{
		Title: "Weekly pulse", ScaleMin: 1, ScaleMax: 5,
	})
	if err != nil {
		return fmt.Errorf("seed survey: %w", err)
	}

	seedQuestions := []models.Question{
		{Type: models.QuestionScale, Prompt: "My workload this week was manageable.", Polarity: models.PolarityPositive, Driver: services.DriverWorkloadDeadlines, Order: 1},
		{Type: models.QuestionScale, Prompt: "I was unclear about my priorities.", Polarity: models.PolarityNegative, Driver: services.DriverClarityPriorities, Order: 2},
		{Type: models.QuestionScale, Prompt: "I felt safe raising concerns with my team.", Polarity: models.PolarityPositive, Driver: services.DriverPsychSafety, Order: 3},
		{Type: models.QuestionText, Prompt: "Anything else on your mind?", Order: 4},
	}
	for i := range seedQuestions {
		q := seedQuestions[i]
		q.SurveyID = sv.ID
		if _, err := surveySvc.AddQuestion(res.OrgID, &q); err != nil {
			return fmt.Errorf("seed question %d: %w", i+1, err)
		}
	}

	slog.Info("seeded demo data", "org_id", res.OrgID, "user_id", res.UserID, "survey_id", sv.ID)
	return nil
}
