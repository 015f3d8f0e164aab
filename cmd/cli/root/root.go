package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "rlog",
	Short:         "Research log CLI",
	Long:          "Command line interface for reading and curating the research log and bibliography.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetRoot returns the RootCmd so subcommand packages can register on it.
func GetRoot() *cobra.Command {
	return RootCmd
}
