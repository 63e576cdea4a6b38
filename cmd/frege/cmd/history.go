package cmd

import (
	"fmt"
	"strings"
	"time"

	frglog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/internal/printer"
	"github.com/spf13/cobra"
)

var (
	historyLimit    int
	historyOrigin   string
	historySession  string
	historyFailed   bool
	historyContains string
	historySince    time.Duration
	historyOlder    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Zeigt und verwaltet die Lauf-Historie",
	Long: `Liest die SQLite-Historie (history.path), in der serve, run, eval
und optional die REPL jeden Lauf speichern.`,
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Listet die letzten Läufe",
	Args:    cobra.NoArgs,
	RunE:    runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Zeigt einen Lauf im Detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Löscht alte Läufe",
	Long: `Löscht Läufe, die älter als --older-than sind. Ohne Flag gilt
history.retention_days aus der Konfiguration.`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximale Anzahl")
	historyListCmd.Flags().StringVar(&historyOrigin, "origin", "", "Nur Läufe dieser Herkunft (cli, repl, grpc, websocket, http)")
	historyListCmd.Flags().StringVar(&historySession, "session", "", "Nur Läufe dieser Sitzung")
	historyListCmd.Flags().BoolVar(&historyFailed, "failed", false, "Nur fehlgeschlagene Läufe")
	historyListCmd.Flags().StringVar(&historyContains, "contains", "", "Nur Läufe, deren Quelltext dies enthält")
	historyListCmd.Flags().DurationVar(&historySince, "since", 0, "Nur Läufe der letzten Zeitspanne (z.B. 24h)")
	historyPruneCmd.Flags().DurationVar(&historyOlder, "older-than", 0, "Alter, ab dem gelöscht wird (z.B. 720h)")
}

func openHistory() (*store.SQLiteRunStore, int, error) {
	cfg, _, err := setup()
	if err != nil {
		return nil, 0, err
	}
	runs, err := store.NewSQLiteRunStore(store.SQLiteConfig{Path: cfg.History.Path})
	if err != nil {
		return nil, 0, err
	}
	return runs, cfg.History.RetentionDays, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	runs, _, err := openHistory()
	if err != nil {
		return err
	}
	defer runs.Close()

	filter := store.RunFilter{
		Origin:     store.Origin(historyOrigin),
		Session:    historySession,
		OnlyFailed: historyFailed,
		Contains:   historyContains,
		Limit:      historyLimit,
	}
	if historySince > 0 {
		filter.Since = time.Now().Add(-historySince)
	}

	list, err := runs.Query(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("Keine Läufe gefunden.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-9s  %-22s  %s\n", "ID", "ZEIT", "HERKUNFT", "ERGEBNIS", "QUELLTEXT")
	for _, run := range list {
		fmt.Printf("%-36s  %-19s  %-9s  %-22s  %s\n",
			run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Origin,
			outcome(run),
			oneLine(run.Source, 40),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	runs, _, err := openHistory()
	if err != nil {
		return err
	}
	defer runs.Close()

	run, err := runs.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", run.ID)
	fmt.Printf("Zeit:      %s\n", run.Timestamp.Local().Format(time.RFC3339))
	fmt.Printf("Herkunft:  %s\n", run.Origin)
	if run.Session != "" {
		fmt.Printf("Sitzung:   %s\n", run.Session)
	}
	fmt.Printf("Dauer:     %dms\n", run.DurationMs)
	fmt.Printf("Ergebnis:  %s\n", outcome(run))
	if run.Failed() {
		fmt.Printf("Fehler:    %s\n", run.Error)
	}
	fmt.Println()
	fmt.Println(run.Source)
	if len(run.Diagnostics) > 0 {
		fmt.Println()
		fmt.Print(printer.New(printer.Options{}).Diagnostics(run.Diagnostics))
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	runs, retentionDays, err := openHistory()
	if err != nil {
		return err
	}
	defer runs.Close()

	olderThan := historyOlder
	if olderThan <= 0 {
		olderThan = time.Duration(retentionDays) * 24 * time.Hour
	}
	n, err := runs.Prune(cmd.Context(), olderThan)
	if err != nil {
		return err
	}
	frglog.GetDefault().Audit("history pruned", frglog.Fields{"runs": n, "older_than": olderThan.String()})
	fmt.Printf("%d Läufe gelöscht (älter als %s).\n", n, olderThan)
	return nil
}

func outcome(run *store.Run) string {
	switch {
	case run.Failed():
		return run.ErrorCode
	case run.HasValue:
		return "= " + run.Value
	default:
		return "-"
	}
}

func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s
}
