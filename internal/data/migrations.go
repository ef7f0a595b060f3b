package data

import (
	"context"
	"database/sql"

	"github.com/NCRC-org/justdata-sub002/internal/migrate"
)

// RunMigrations applies the Result Store schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
