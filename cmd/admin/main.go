package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/tokeley/researchlog/internal/config"
	"github.com/tokeley/researchlog/internal/db"
)

func main() {
	cfg := config.Load()
	open := func(ctx context.Context) (*sql.DB, error) {
		return db.Connect(ctx, cfg.DSN(), 2, 1)
	}

	if err := newRootCmd(cfg.DSN(), open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
