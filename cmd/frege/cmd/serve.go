package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/internal/frege/handler"
	"github.com/msto63/frege/internal/frege/server"
	coreGrpc "github.com/msto63/frege/pkg/core/grpc"
	"github.com/msto63/frege/pkg/core/logging"
	"github.com/msto63/frege/pkg/core/version"
	"github.com/spf13/cobra"
)

var (
	serveHost     string
	serveGRPCPort int
	serveHTTPPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Startet den Auswertungs-Server",
	Long: `Startet den gRPC-Dienst frege.v1.Evaluator und den HTTP-Server mit
WebSocket-Sitzungen.

Endpunkte:
  gRPC  frege.v1.Evaluator/Evaluate, /Parse, grpc.health.v1 (:9310)
  HTTP  /ws, /healthz, /api/v1/evaluate, /api/v1/parse, /api/v1/stats (:9311)

Ist die Historie aktiviert, wird jeder Lauf in SQLite gespeichert und
beim Start werden Läufe älter als retention_days gelöscht.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host-Adresse (überschreibt server.host)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC-Port (überschreibt server.grpc_port)")
	serveCmd.Flags().IntVar(&serveHTTPPort, "http-port", 0, "HTTP-Port (überschreibt server.http_port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if serveGRPCPort != 0 {
		cfg.Server.GRPCPort = serveGRPCPort
	}
	if serveHTTPPort != 0 {
		cfg.Server.HTTPPort = serveHTTPPort
	}

	svc, err := newService(cfg, logger, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	log := logging.Wrap(logger, "frege-serve")
	coreGrpc.SetLogger(logging.Wrap(logger, "frege-grpc"))

	if runs := svc.Store(); runs != nil && cfg.History.RetentionDays > 0 {
		retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
		if n, err := runs.Prune(cmd.Context(), retention); err != nil {
			printError("Historie nicht bereinigt", err)
		} else if n > 0 {
			logger.Audit("history pruned", frglog.Fields{"runs": n, "retention_days": cfg.History.RetentionDays})
		}
	}

	grpcSrv := server.New(server.Config{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.GRPCPort,
		MaxRecvMsgSize:   cfg.Server.MaxRecvSize,
		EnableReflection: cfg.Server.EnableReflect,
	}, svc)
	if err := grpcSrv.StartAsync(); err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      handler.NewHandler(version.Server, svc),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Println("frege")
	fmt.Println("=====")
	fmt.Printf("  [+] gRPC (Evaluator) auf %s\n", grpcSrv.Address())
	fmt.Printf("  [+] HTTP/WebSocket auf %s\n", cfg.HTTPAddress())
	if svc.Store() != nil {
		fmt.Printf("  [+] Historie in %s\n", cfg.History.Path)
	}
	fmt.Println()
	fmt.Println("Drücke Ctrl+C zum Beenden")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case serveErr = <-errCh:
		printError("HTTP-Server", serveErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	grpcSrv.StopWithTimeout(ctx)

	fmt.Println("Server beendet.")
	if serveErr != nil {
		return errReported
	}
	return nil
}
