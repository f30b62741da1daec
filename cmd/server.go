package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"academic-records/internal/api/router"
	"academic-records/internal/api/tcp"
	"academic-records/internal/config"
	"academic-records/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	port       string
	httpPort   string
	enableHTTP bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TCP command server",
	Long: `Start the line-based TCP command server.
Each client gets its own goroutine, up to server.max_connections at a time.
With --http the read-only status API is served as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&port, "port", "p", "", "TCP port (overrides server.port)")
	serveCmd.Flags().StringVar(&httpPort, "http-port", "", "HTTP status API port (overrides http.port)")
	serveCmd.Flags().BoolVar(&enableHTTP, "http", false, "also serve the HTTP status API")
}

func startServer() {
	cfg := config.Get()

	// Override ports if flags are provided
	if port != "" {
		cfg.Server.Port = port
	}
	if httpPort != "" {
		cfg.HTTP.Port = httpPort
	}
	if enableHTTP {
		cfg.HTTP.Enabled = true
	}

	app, err := newApplication(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize: %v", err)
	}
	defer app.close()

	created, err := app.prepare(context.Background())
	if err != nil {
		logger.Fatal("Failed to prepare data files: %v", err)
	}
	for _, path := range created {
		logger.Info("Created %s", path)
	}

	dispatcher := tcp.NewDispatcher(app.records, app.reports, app.auth, app.auditor, tcp.Options{
		RequireAuth: cfg.Server.RequireAuth,
		ListLimit:   app.listLimit(),
	})
	tcpServer := tcp.NewServer(tcp.Config{
		Addr:           net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		MaxConnections: cfg.Server.MaxConnections,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CommandTimeout: time.Duration(cfg.Server.CommandTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxLineBytes:   cfg.Server.MaxLineBytes,
	}, dispatcher)

	go func() {
		if err := tcpServer.ListenAndServe(); err != nil && !errors.Is(err, tcp.ErrServerClosed) {
			logger.Fatal("Failed to start command server: %v", err)
		}
	}()

	var srv *http.Server
	if cfg.HTTP.Enabled {
		srv = &http.Server{
			Addr: ":" + cfg.HTTP.Port,
			Handler: router.NewRouter(router.Dependencies{
				Records:      app.records,
				Users:        app.users,
				Auth:         app.auth,
				Sessions:     app.sessions,
				Version:      cfg.App.Version,
				AllowOrigins: cfg.HTTP.AllowOrigins,
			}),
			ReadTimeout:    time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
			MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
		}

		go func() {
			logger.Info("Starting status API on port %s", cfg.HTTP.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Failed to start status API: %v", err)
			}
		}()
	}

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := tcpServer.Shutdown(ctx); err != nil {
		logger.Error("Command server forced to shutdown: %v", err)
	}
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Status API forced to shutdown: %v", err)
		}
	}

	logger.Info("Server exited")
}
