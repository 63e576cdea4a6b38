package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	frgerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/lang"
	"github.com/msto63/frege/foundation/lang/ast"
	"github.com/msto63/frege/internal/printer"
	"github.com/spf13/cobra"
)

var (
	parseFormat    string
	parsePositions bool
	parsePlain     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <datei|ausdruck>...",
	Short: "Zeigt den Syntaxbaum an",
	Long: `Parst Quelltext ohne ihn auszuwerten und gibt den Syntaxbaum aus.

Ist das einzige Argument eine existierende Datei, wird ihr Inhalt geparst,
sonst werden die Argumente als Quelltext verwendet.

Formate:
  tree   Baumdarstellung (Standard)
  text   kanonische Textform
  json   Knoten als JSON`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

var checkCmd = &cobra.Command{
	Use:   "check <datei|ausdruck>...",
	Short: "Prüft Syntax und Namen ohne Auswertung",
	Long: `Parst den Quelltext und meldet Syntaxfehler sowie unbekannte
Variablen und Funktionen. Endet mit Exit-Code 1, wenn Fehler gefunden wurden.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)

	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "tree", "Ausgabeformat (tree, text, json)")
	parseCmd.Flags().BoolVar(&parsePositions, "positions", false, "Zeile:Spalte an jedem Knoten anzeigen")
	parseCmd.Flags().BoolVar(&parsePlain, "plain", false, "Ohne Farben ausgeben")
	checkCmd.Flags().BoolVar(&parsePlain, "plain", false, "Ohne Farben ausgeben")
}

// parseSource parses the arguments in a fresh engine configured like the
// service
func parseSource(args []string) (*lang.Engine, string, error) {
	source, err := sourceArg(args)
	if err != nil {
		return nil, "", err
	}
	cfg, logger, err := setup()
	if err != nil {
		return nil, "", err
	}
	svc, err := newService(cfg, logger, false)
	if err != nil {
		return nil, "", err
	}
	defer svc.Close()
	return svc.NewSession(), source, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	eng, source, err := parseSource(args)
	if err != nil {
		return err
	}
	prog, diags, err := eng.Parse(source)
	if err != nil {
		return err
	}

	p := printer.New(printer.Options{Plain: parsePlain, Positions: parsePositions})
	switch parseFormat {
	case "tree":
		fmt.Println(p.Program(prog))
	case "text":
		fmt.Println(prog.String())
	case "json":
		out := map[string]interface{}{
			"nodes":       ast.DumpProgram(prog),
			"diagnostics": diags.Items(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		if diags.HasErrors() {
			return errReported
		}
		return nil
	default:
		return frgerror.Newf("unknown format %q", parseFormat).
			WithCode(frgerror.CodeInvalidInput).
			WithDetail("format", parseFormat)
	}

	fmt.Fprint(os.Stderr, p.Diagnostics(diags.Items()))
	if diags.HasErrors() {
		return errReported
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	eng, source, err := parseSource(args)
	if err != nil {
		return err
	}
	prog, diags, err := eng.Parse(source)
	if err != nil {
		return err
	}
	eng.Check(prog, diags)

	p := printer.New(printer.Options{Plain: parsePlain})
	fmt.Fprint(os.Stderr, p.Diagnostics(diags.Items()))
	if diags.HasErrors() {
		return errReported
	}
	fmt.Printf("ok: %d Anweisungen, %d Warnungen\n", len(prog.Statements), len(diags.Warnings()))
	return nil
}
