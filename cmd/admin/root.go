package main

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"
)

// opener returns a ready database handle. Tests swap in sqlmock.
type opener func(ctx context.Context) (*sql.DB, error)

func newRootCmd(dsn string, open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "rlog-admin",
		Short:         "Research log administration",
		Long:          "Operator commands for the research log database: schema migrations and admin accounts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(dsn), userCmd(open))
	return root
}
