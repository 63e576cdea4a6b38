package cmd

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	frgerror "github.com/msto63/frege/foundation/core/error"
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/internal/frege/server"
	"github.com/msto63/frege/internal/printer"
	"github.com/msto63/frege/pkg/core/config"
	coreGrpc "github.com/msto63/frege/pkg/core/grpc"
	"github.com/spf13/cobra"
)

var (
	remoteAddr    string
	remoteSession string
	remoteParse   bool
	remoteHealth  bool
	remotePlain   bool
	remoteTimeout time.Duration
)

var remoteCmd = &cobra.Command{
	Use:   "remote [ausdruck]...",
	Short: "Wertet über einen laufenden Server aus",
	Long: `Sendet Quelltext an den gRPC-Dienst frege.v1.Evaluator eines
laufenden "frege serve".

Beispiele:
  frege remote "1 + 2"
  frege remote --session a "let x = 4"
  frege remote --session a "x * x"
  frege remote --parse "f(1, 2,)"
  frege remote --health`,
	RunE: runRemote,
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.Flags().StringVar(&remoteAddr, "addr", "", "Server-Adresse (default: localhost:<server.grpc_port>)")
	remoteCmd.Flags().StringVar(&remoteSession, "session", "", "Benannte Sitzung auf dem Server")
	remoteCmd.Flags().BoolVar(&remoteParse, "parse", false, "Nur parsen und den Syntaxbaum ausgeben")
	remoteCmd.Flags().BoolVar(&remoteHealth, "health", false, "Nur den Health-Status abfragen")
	remoteCmd.Flags().BoolVar(&remotePlain, "plain", false, "Ohne Farben ausgeben")
	remoteCmd.Flags().DurationVar(&remoteTimeout, "timeout", 10*time.Second, "Timeout für Verbindung und Aufruf")
}

func runRemote(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	addr := remoteAddr
	if addr == "" {
		addr = dialAddress(cfg)
	}

	conn, err := coreGrpc.DialWithTimeout(addr, remoteTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	// the server logs this id with the request
	requestID := uuid.NewString()
	ctx = coreGrpc.WithRequestID(ctx, requestID)
	logger.Debug("remote call", frglog.Fields{"addr": addr, "request_id": requestID})

	if remoteHealth {
		serving, err := coreGrpc.CheckHealth(ctx, conn, server.ServiceName)
		if err != nil {
			return err
		}
		if !serving {
			fmt.Printf("%s: NOT_SERVING\n", server.ServiceName)
			return errReported
		}
		fmt.Printf("%s: SERVING\n", server.ServiceName)
		return nil
	}

	if len(args) == 0 {
		return frgerror.New("source required").WithCode(frgerror.CodeInvalidInput)
	}
	source, err := sourceArg(args)
	if err != nil {
		return err
	}

	client := server.NewClient(conn)
	p := printer.New(printer.Options{Plain: remotePlain})

	if remoteParse {
		resp, err := client.Parse(ctx, source)
		if err != nil {
			return err
		}
		fmt.Println(resp.Tree)
		fmt.Print(p.Diagnostics(resp.Diagnostics))
		return nil
	}

	resp, err := client.Evaluate(ctx, source, remoteSession)
	return report(p, resp, err)
}

// dialAddress turns the configured listen address into one a client can
// dial; wildcard hosts become localhost
func dialAddress(cfg *config.Config) string {
	switch cfg.Server.Host {
	case "", "0.0.0.0", "::":
		return net.JoinHostPort("localhost", strconv.Itoa(cfg.Server.GRPCPort))
	}
	return cfg.GRPCAddress()
}
