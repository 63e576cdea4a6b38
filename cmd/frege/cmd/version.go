package cmd

import (
	"fmt"
	"runtime"

	"github.com/msto63/frege/pkg/core/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Zeigt die Version an",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
		fmt.Printf("  Go Version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		if verbose {
			for _, name := range []string{"lang", "server", "handler", "store", "repl"} {
				fmt.Printf("  %-10s  %s\n", name+":", version.ServiceVersion(name))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
