package ui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"finboard/internal/db"
	"finboard/internal/model"
	"finboard/internal/report"
	"finboard/internal/source"
)

// loadTimeout bounds one refresh of every source.
const loadTimeout = 60 * time.Second

// loadDataset fetches every source, stores the raw exports as snapshots and
// returns the merged, enriched transactions. When fetching fails, the
// latest snapshot of every source is used instead.
func loadDataset(ctx context.Context, conn *sql.DB, client *source.Client, sources []string, logger *slog.Logger) (model.Dataset, error) {
	if len(sources) == 0 {
		return model.Dataset{}, nil
	}

	var snapshotAt time.Time
	exports, err := client.FetchAll(ctx, sources)
	if err != nil {
		logger.Warn("fetch failed, trying snapshots", "err", err)
		cached, at, cacheErr := loadSnapshots(conn, sources)
		if cacheErr != nil {
			return model.Dataset{}, errors.Join(err, cacheErr)
		}
		exports, snapshotAt = cached, at
	} else if conn != nil {
		for _, exp := range exports {
			if err := db.SaveSnapshot(conn, exp.Source, exp.Body); err != nil {
				logger.Warn("failed to store snapshot", "source", exp.Source, "err", err)
			}
		}
	}

	sets := make([]source.Dataset, 0, len(exports))
	for _, exp := range exports {
		set, err := source.ParseBytes(exp.Body)
		if errors.Is(err, source.ErrEmptyExport) {
			logger.Info("skipping empty export", "source", exp.Source)
			continue
		}
		if err != nil {
			return model.Dataset{}, fmt.Errorf("failed to parse %s: %w", exp.Source, err)
		}
		if len(sources) > 1 {
			set = set.Tag("source", exp.Source)
		}
		sets = append(sets, set)
	}

	merged := source.Merge(sets...)
	return model.Dataset{
		Columns:    merged.Columns,
		Rows:       report.Enrich(merged.Rows),
		Sources:    sources,
		SnapshotAt: snapshotAt,
	}, nil
}

// loadSnapshots returns the latest snapshot of every source and the oldest
// fetch time among them.
func loadSnapshots(conn *sql.DB, sources []string) ([]source.Export, time.Time, error) {
	if conn == nil {
		return nil, time.Time{}, db.ErrNoSnapshot
	}
	var (
		out    []source.Export
		oldest time.Time
	)
	for _, src := range sources {
		snap, err := db.LatestSnapshot(conn, src)
		if err != nil {
			return nil, time.Time{}, err
		}
		out = append(out, source.Export{Source: src, Body: snap.Body})
		if oldest.IsZero() || snap.FetchedAt.Before(oldest) {
			oldest = snap.FetchedAt
		}
	}
	return out, oldest, nil
}

func loadDataCmd(conn *sql.DB, client *source.Client, sources []string, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		data, err := loadDataset(ctx, conn, client, sources, logger)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.DataLoadedMsg{Data: data}
	}
}
