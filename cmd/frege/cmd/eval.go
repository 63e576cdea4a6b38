package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/internal/printer"
	"github.com/spf13/cobra"
)

var (
	evalShowAST  bool
	evalPlain    bool
	evalShowTime bool
)

var runCmd = &cobra.Command{
	Use:   "run <datei>",
	Short: "Wertet eine Quelldatei aus",
	Long: `Wertet den Inhalt einer Quelldatei als eine Einheit aus und gibt
den Wert der letzten Anweisung aus. Mit "-" wird von stdin gelesen.

Diagnosen und Fehler gehen nach stderr; bei Syntaxfehlern oder
Auswertungsfehlern endet frege mit Exit-Code 1.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		return evaluate(cmd.Context(), source)
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <ausdruck>...",
	Short: "Wertet einen Ausdruck aus",
	Long: `Wertet die Argumente, mit Leerzeichen verbunden, als eine Einheit aus.

Beispiele:
  frege eval "1 + 2 * 3"
  frege eval "let x = 5; func f(y) { return x + y; } f(3)"
  frege eval --ast "(1 + 2) * 3"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := sourceArg(args)
		if err != nil {
			return err
		}
		return evaluate(cmd.Context(), source)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(evalCmd)

	for _, c := range []*cobra.Command{runCmd, evalCmd} {
		c.Flags().BoolVar(&evalShowAST, "ast", false, "Syntaxbaum vor dem Ergebnis ausgeben")
		c.Flags().BoolVar(&evalPlain, "plain", false, "Ohne Farben ausgeben")
		c.Flags().BoolVar(&evalShowTime, "time", false, "Laufzeit ausgeben")
	}
}

func evaluate(ctx context.Context, source string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	svc, err := newService(cfg, logger, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	p := printer.New(printer.Options{Plain: evalPlain})
	if evalShowAST {
		if prog, _, err := svc.NewSession().Parse(source); err == nil {
			fmt.Println(p.Program(prog))
		}
	}

	resp, err := svc.Evaluate(ctx, service.EvaluateRequest{Source: source, Origin: store.OriginCLI})
	return report(p, resp, err)
}

// report prints diagnostics and faults to stderr and the value to stdout
func report(p *printer.Printer, resp *service.EvaluateResponse, err error) error {
	if resp == nil {
		return err
	}

	fmt.Fprint(os.Stderr, p.Diagnostics(resp.Diagnostics))
	if resp.Error != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]\n", p.Error(errors.New(resp.Error)), resp.ErrorCode)
		return errReported
	}
	if resp.HasValue {
		fmt.Println(p.Value(resp.Value))
	}
	if evalShowTime {
		fmt.Fprintf(os.Stderr, "%s (run %s)\n", resp.Duration, resp.RunID)
	}
	return nil
}
