package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"advisory/cmd/advisory/chat"
	"advisory/internal/advisory"
	"advisory/internal/config"
	"advisory/internal/gateway"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Gateway flags
	gatewayAddr string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "advisory",
	Short: "AI Advisory - conversational business analysis client",
	Long: `AI Advisory is a terminal client for requesting comprehensive business
analyses. Describe what you need, include your Company ID and User ID, and
the assistant delivers a downloadable report when the analysis completes.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "advisory" && cmd.CalledAs() == "advisory" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
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
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// gatewayCmd runs the CORS forwarding relay
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the CORS forwarding relay",
	Long: `Runs an HTTP relay that forwards /proxy?url=... requests server-side
and answers with permissive CORS headers, for browser clients that cannot
reach the analysis backend directly.`,
	RunE: runGateway,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.advisory/config.yaml)")

	gatewayCmd.Flags().StringVar(&gatewayAddr, "addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(gatewayCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

func runInteractiveChat() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := advisory.NewClient(advisory.Options{
		Endpoint:       cfg.Endpoint,
		MaxAttempts:    cfg.MaxAttempts,
		AttemptTimeout: cfg.AttemptTimeoutDuration(),
		RetryBackoff:   cfg.RetryBackoffDuration(),
		Logger:         buildFileLogger(cfg.LogFile),
	})

	p := tea.NewProgram(chat.InitChat(cfg, client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}

// buildFileLogger writes to a file so log output never corrupts the TUI.
func buildFileLogger(path string) *zap.Logger {
	if path == "" {
		return zap.NewNop()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := gatewayAddr
	if addr == "" {
		addr = cfg.Gateway.Addr
	}

	handler := gateway.NewHandler(&http.Client{
		Timeout: cfg.Gateway.UpstreamTimeoutDuration(),
	}, logger)
	srv := gateway.NewServer(addr, handler.Router(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown: %w", err)
	}
	return <-errCh
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
