package cmd

import (
	"context"

	"github.com/genelens/genelens/internal/config"
	apperrors "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/store"
)

// openStore opens and migrates the journal database.
func openStore(ctx context.Context, cfg config.StoreConfig) (*store.Store, error) {
	db, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, err, "failed to open journal store")
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.WrapDatabaseError(ctx, err, "failed to migrate journal store")
	}

	return db, nil
}
