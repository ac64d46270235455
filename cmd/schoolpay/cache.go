package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/service"
	"github.com/Veraticus/schoolpay/internal/storage"
)

// snapshotStore scopes cached result sets to a school so school and
// all-school listings with equal parameters do not overwrite each other.
type snapshotStore struct {
	store  service.SnapshotStore
	school string
}

var _ service.SnapshotStore = snapshotStore{}

func (s snapshotStore) scoped(key string) string {
	if s.school == "" {
		return key
	}
	return "school=" + s.school + "&" + key
}

func (s snapshotStore) SaveSnapshot(ctx context.Context, key string, transactions []model.Transaction) error {
	return s.store.SaveSnapshot(ctx, s.scoped(key), transactions)
}

func (s snapshotStore) LoadSnapshot(ctx context.Context, key string) ([]model.Transaction, time.Time, error) {
	return s.store.LoadSnapshot(ctx, s.scoped(key))
}

func (s snapshotStore) LatestSnapshot(ctx context.Context) (string, []model.Transaction, error) {
	return s.store.LatestSnapshot(ctx)
}

// loadSnapshot returns the result set cached under key, or the most recent
// one when nothing was cached for exactly these parameters.
func loadSnapshot(ctx context.Context, store service.SnapshotStore, key string) ([]model.Transaction, error) {
	rows, fetchedAt, err := store.LoadSnapshot(ctx, key)
	if err == nil {
		slog.Info("Using cached transactions", "fetched_at", fetchedAt.Local().Format(time.DateTime), "rows", len(rows))
		return rows, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	latestKey, rows, err := store.LatestSnapshot(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no cached transactions: run transactions list first: %w", err)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("No cache for these filters, using the last fetched result set", "query", latestKey, "rows", len(rows))
	return rows, nil
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage locally cached result sets",
	}

	cmd.AddCommand(cachePruneCmd())

	return cmd
}

func cachePruneCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete cached result sets older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if olderThan < 0 {
				return fmt.Errorf("%w: --older-than must not be negative", model.ErrInvalidInput)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Warn("Failed to close database", "error", closeErr)
				}
			}()

			removed, err := store.PruneSnapshots(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed %d cached result sets", removed)))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "age of the result sets to delete")

	return cmd
}
