package cmd

import (
	"github.com/spf13/cobra"

	configCmd "github.com/andrefdof/syncfiler/cmd/config"
	"github.com/andrefdof/syncfiler/cmd/once"
	"github.com/andrefdof/syncfiler/cmd/run"
	"github.com/andrefdof/syncfiler/cmd/util"
	"github.com/andrefdof/syncfiler/cmd/version"
)

// Execute runs the main CLI process.
func Execute() {
	rootCmd := &cobra.Command{
		Use:   "syncfiler",
		Short: "Keep a replica directory identical to a source directory",
		Long: "syncfiler periodically mirrors the files in a source directory " +
			"into a replica directory.\n" +
			"Changed files are copied, and files that only exist in the " +
			"replica are deleted.",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		configCmd.New(),
		once.New(),
		run.New(),
		version.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
