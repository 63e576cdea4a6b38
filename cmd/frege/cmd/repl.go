package cmd

import (
	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/internal/tui/repl"
	"github.com/spf13/cobra"
)

var (
	replShowAST bool
	replPlain   bool
)

var replCmd = &cobra.Command{
	Use:     "repl",
	Aliases: []string{"shell", "i"},
	Short:   "Startet die interaktive Sitzung",
	Long: `Startet eine interaktive Sitzung im Terminal.

Jede Eingabezeile wird als eigene Einheit in derselben Sitzung
ausgewertet; Variablen und Funktionen bleiben bis :reset erhalten.

Befehle:
  :ast      Syntaxbaum nach jeder Zeile an/aus
  :vars     Variablen anzeigen
  :funcs    Funktionen anzeigen
  :reset    Sitzung zurücksetzen
  :clear    Ausgabe leeren
  :quit     Beenden

Tastenkuerzel:
  Enter       Auswerten
  ↑/↓         Eingabeverlauf
  PgUp/PgDn   Scrollen
  Esc/Ctrl+C  Beenden`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().BoolVar(&replShowAST, "ast", false, "Syntaxbaum von Anfang an anzeigen")
	replCmd.Flags().BoolVar(&replPlain, "plain", false, "Syntaxbaum ohne Farben")
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	// keep log lines out of the alternate screen unless asked for
	if !verbose && logger.GetLevel() < frglog.LevelWarn {
		logger = logger.WithLevel(frglog.LevelWarn)
	}

	svc, err := newService(cfg, logger, cfg.REPL.Record)
	if err != nil {
		return err
	}
	defer svc.Close()

	return repl.Run(svc, repl.Config{
		Prompt:  cfg.REPL.Prompt,
		ShowAST: cfg.REPL.ShowAST || replShowAST,
		Plain:   replPlain,
	})
}
