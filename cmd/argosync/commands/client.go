package commands

import (
	"context"
	"log/slog"

	"argosync/lib/restyutil"
	"argosync/lib/scrapers/argo"
	"argosync/lib/serviceutil"
	"argosync/lib/snapshot"
)

func newArgoClient(cfg Config) *argo.Client {
	opts := argo.Options{
		SchoolCode: cfg.Argo.SchoolCode,
		Username:   cfg.Argo.Username,
		Password:   cfg.Argo.Password,
	}
	if *debug {
		opts.Debug = restyutil.NewFilesystemOutput(".dev/resty/argo")
	}

	client, err := argo.NewClient(opts)
	if err != nil {
		serviceutil.Fatal("failed to initialize portal client", err)
	}
	return client
}

// openSnapshots returns nil when no snapshot database is configured,
// callers treat the store as optional.
func openSnapshots(cfg Config) *snapshot.Store {
	if cfg.Snapshots.File == "" && cfg.Snapshots.Url == "" {
		return nil
	}

	db, err := cfg.Snapshots.OpenDB()
	if err != nil {
		serviceutil.Fatal("failed to open snapshot db", err)
	}
	store, err := snapshot.NewStore(db)
	if err != nil {
		serviceutil.Fatal("failed to initialize snapshot store", err)
	}
	return store
}

// loadDashboard logs in and fetches a fresh dashboard. When the fetch
// fails and a snapshot exists, the snapshot is served instead so a
// portal outage doesn't take the whole run down.
func loadDashboard(ctx context.Context, client *argo.Client, store *snapshot.Store) *argo.Dashboard {
	err := client.Login(ctx)
	if err == nil {
		var dash *argo.Dashboard
		dash, err = client.FetchDashboard(ctx)
		if err == nil {
			client.FetchExtras(ctx)
			if store != nil {
				if putErr := store.PutDashboard(ctx, dash); putErr != nil {
					slog.WarnContext(ctx, "failed to persist snapshot", "err", putErr)
				}
			}
			return dash
		}
	}

	if store != nil {
		dash, fetchedAt, snapErr := store.GetDashboard(ctx)
		if snapErr == nil {
			slog.WarnContext(ctx, "portal unavailable, using last snapshot",
				"fetched_at", fetchedAt, "err", err)
			return dash
		}
	}

	serviceutil.Fatal("failed to fetch dashboard", err)
	return nil
}
