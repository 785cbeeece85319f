package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridglot/gridglot/internal/output"
	"github.com/gridglot/gridglot/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build and version information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringP("format", "f", "text", "output format: text, json or yaml")
}

func runVersion(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	if formatStr == "text" {
		fmt.Println(version.Full())
		return nil
	}

	w, err := output.NewWriter(os.Stdout, output.Format(formatStr))
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Write(version.Get())
}
