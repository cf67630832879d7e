package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/youruser/likethumb/internal/api"
	"github.com/youruser/likethumb/internal/config"
	imagepkg "github.com/youruser/likethumb/internal/image"
	"github.com/youruser/likethumb/internal/logging"
	"github.com/youruser/likethumb/internal/store"
	"github.com/youruser/likethumb/internal/updater"
	"github.com/youruser/likethumb/internal/youtube"
)

var (
	envFile  string
	cfg      config.Config
	interval time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "likethumb",
		Short: "Keep a YouTube video's title and thumbnail in sync with its stats",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			loaded, err := config.Load(files...)
			if err != nil {
				return err
			}
			cfg = loaded
			return logging.Setup(cfg.LogLevel, cfg.LogFormat)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default: .env if present)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the OAuth callback server and, with UPDATE_INTERVAL, the periodic updater",
		Long: `Start the HTTP server.

Endpoints:
  GET  /              - OAuth consent redirect / callback
  GET  /api/health    - health check
  GET  /api/auth/qr   - consent URL as a QR code
  POST /api/update    - run one update cycle now
  GET  /api/preview   - render ?count=N and return the thumbnail`,
		RunE: runServe,
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh title and thumbnail once, or every --interval",
		RunE:  runUpdate,
	}
	updateCmd.Flags().DurationVar(&interval, "interval", 0, "repeat every interval until interrupted")

	renderCmd := &cobra.Command{
		Use:   "render <count>",
		Short: "Render the thumbnail for a count without touching YouTube",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove run directories left behind by aborted renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := imagepkg.NewRenderer(cfg.Render)
			if err != nil {
				return err
			}
			return r.Sweep(cmd.Context())
		},
	}

	rootCmd.AddCommand(serveCmd, updateCmd, renderCmd, sweepCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	renderer *imagepkg.Renderer
	preview  *imagepkg.Renderer
	auth     *youtube.Authenticator
	client   *youtube.Lazy
	stats    *store.StatsFile
	updater  *updater.Updater
}

func newApp(ctx context.Context) (*app, error) {
	renderer, err := imagepkg.NewRenderer(cfg.Render)
	if err != nil {
		return nil, err
	}
	preview, err := imagepkg.NewRenderer(cfg.Render.Preview())
	if err != nil {
		return nil, err
	}
	auth := youtube.NewAuthenticator(cfg.ClientID, cfg.ClientSecret, cfg.OAuthRedirect(), cfg.TokenFile)
	client := youtube.NewLazy(ctx, auth, youtube.DefaultLimiter())
	stats := store.NewStatsFile(cfg.StatsFile)
	upd, err := updater.New(client, renderer, stats, updater.Options{
		VideoID:       cfg.VideoID,
		ChannelID:     cfg.ChannelID,
		TitleTemplate: cfg.TitleTemplate,
		Metric:        cfg.Metric,
	})
	if err != nil {
		return nil, err
	}
	return &app{renderer: renderer, preview: preview, auth: auth, client: client, stats: stats, updater: upd}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := cfg.ValidateAPI(); err != nil {
		return err
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.Gin())
	api.RegisterRoutes(r, &api.Handlers{
		Auth:         a.auth,
		Renderer:     a.preview,
		Stats:        a.stats,
		Update:       a.updater.Update,
		OnAuthorized: a.client.Reset,
	})

	if cfg.UpdateInterval > 0 {
		go a.updater.Run(ctx, cfg.UpdateInterval)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("redirect", cfg.OAuthRedirect()).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := cfg.ValidateAPI(); err != nil {
		return err
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	if interval > 0 {
		a.updater.Run(ctx, interval)
		return nil
	}
	log.Info().Msg("updating video")
	res, err := a.updater.Update(ctx)
	if err != nil {
		return fmt.Errorf("updating video: %w", err)
	}
	return printJSON(res)
}

func runRender(cmd *cobra.Command, args []string) error {
	n, err := imagepkg.ParseCount(args[0])
	if err != nil {
		return err
	}
	r, err := imagepkg.NewRenderer(cfg.Render)
	if err != nil {
		return err
	}
	thumb, err := r.Generate(cmd.Context(), n)
	if err != nil {
		return err
	}
	return printJSON(thumb)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
