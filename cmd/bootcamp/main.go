package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/auth"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/earnings"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/files"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/handler"
	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/leaderboard"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/revenue"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bootcamp",
		Short: "Bootcamp management API for students, teachers and admins",
	}

	serve := serveCmd()
	root.AddCommand(serve, recomputeCmd(), exportEarningsCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `bootcamp --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "bootcamp.db", "SQLite database path")
	f.String("jwt-secret", "", "Secret used to sign access tokens (or set BOOTCAMP_JWT_SECRET)")
	f.Duration("token-ttl", 24*time.Hour, "Access token lifetime")
	f.String("admin-email", "admin@bootcamp.local", "Email of the initial admin account")
	f.String("admin-password", "", "Initial admin password (or set BOOTCAMP_ADMIN_PASSWORD)")
	f.String("upload-dir", "uploads", "Directory for submission attachments")
	f.Int64("max-upload-mb", 10, "Maximum submission upload size in MB")
	f.StringP("lang", "l", "en", "Default response language (en, ru)")
	f.String("redis-addr", "", "Redis address for the leaderboard cache (empty disables caching)")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
	f.Duration("leaderboard-ttl", 5*time.Minute, "How long cached leaderboards stay valid")
	f.String("rank-schedule", "", "Cron schedule for periodic rank recompute, e.g. \"@every 15m\" (empty disables)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func recomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute-ranks",
		Short: "Recompute national and batch ranks once and exit",
		RunE:  runRecompute,
	}
	f := cmd.Flags()
	f.String("db", "bootcamp.db", "SQLite database path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportEarningsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-earnings",
		Short: "Export the platform earnings report as JSON",
		RunE:  runExportEarnings,
	}
	f := cmd.Flags()
	f.String("db", "bootcamp.db", "SQLite database path")
	f.String("time-range", revenue.Range30Days, "Report window (7days, 30days, 90days, year, alltime)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.StringP("lang", "l", "en", "Language for report labels (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
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

	v.SetEnvPrefix("BOOTCAMP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("bootcamp")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/bootcamp")
	v.AddConfigPath("/etc/bootcamp")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	secret := v.GetString("jwt-secret")
	if secret == "" {
		return fmt.Errorf("jwt secret is required: set --jwt-secret flag or BOOTCAMP_JWT_SECRET env var")
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-email"), v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	var cache leaderboard.Cache
	if addr := v.GetString("redis-addr"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: v.GetString("redis-password"),
			DB:       v.GetInt("redis-db"),
		})
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("redis health check: %w", err)
		}
		cache = leaderboard.NewRedisCache(client, v.GetDuration("leaderboard-ttl"))
		slog.Info("leaderboard cache enabled", "redis_addr", addr)
	}
	board := leaderboard.New(db, cache)

	if spec := v.GetString("rank-schedule"); spec != "" {
		c, err := leaderboard.Schedule(spec, board, time.Minute)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	earn := earnings.New(db)
	earn.UnknownLabel = func(ctx context.Context) string { return appI18n.T(ctx, "UnknownBatch") }

	uploads, err := files.NewOS(v.GetString("upload-dir"), "/uploads")
	if err != nil {
		return err
	}

	h := handler.New(db, earn, board, uploads,
		auth.NewIssuer(secret, v.GetDuration("token-ttl")),
		handler.Config{MaxUploadBytes: v.GetInt64("max-upload-mb") << 20},
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"lang", lang,
		"upload_dir", v.GetString("upload-dir"),
		"rank_schedule", v.GetString("rank-schedule"),
	)
	return http.ListenAndServe(addr, r)
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	res, err := leaderboard.New(db, nil).Recompute(cmd.Context())
	if err != nil {
		return fmt.Errorf("recompute ranks: %w", err)
	}
	slog.Info("ranks recomputed", "students", res.Students, "batches", res.Batches)
	return nil
}

func runExportEarnings(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	timeRange := v.GetString("time-range")
	if !revenue.ValidRange(timeRange) {
		return fmt.Errorf("unknown time range %q", timeRange)
	}
	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	earn := earnings.New(db)
	earn.UnknownLabel = func(ctx context.Context) string { return appI18n.T(ctx, "UnknownBatch") }
	report, err := earn.Platform(cmd.Context(), timeRange, time.Now())
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)
	return nil
}

func seedAdmin(db *store.Store, email, password string) error {
	count, err := db.AccountCount(context.Background())
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or BOOTCAMP_ADMIN_PASSWORD env var")
	}

	if _, err := handler.CreateAdmin(context.Background(), db, "Administrator", email, password); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	slog.Info("seeded default admin account", "email", email)
	return nil
}
