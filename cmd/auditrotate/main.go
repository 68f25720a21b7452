// auditrotate deletes audit entries older than the retention window. It is
// the only code path that removes audit rows; the API never does.
//
// Usage: go run ./cmd/auditrotate [-days N] [-dry-run] [-force]
// The default window comes from AUDIT_RETENTION_DAYS (365). Windows under
// 30 days are refused unless -force is set.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/richland-auto/inventory-api/internal/infrastructure/postgres"
	"github.com/richland-auto/inventory-api/pkg/config"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

const minRetentionDays = 30

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	days := flag.Int("days", cfg.Audit.RetentionDays, "retention window in days; older entries are deleted")
	dryRun := flag.Bool("dry-run", false, "report the cutoff without deleting anything")
	force := flag.Bool("force", false, "allow windows shorter than 30 days")
	flag.Parse()

	if *days <= 0 {
		log.Fatal().Int("days", *days).Msg("retention window must be positive")
	}
	if *days < minRetentionDays && !*force {
		log.Fatal().
			Int("days", *days).
			Int("min", minRetentionDays).
			Msg("retention window under the minimum; pass -force to override")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -*days)
	log.Info().
		Int("days", *days).
		Time("cutoff", cutoff).
		Bool("dry_run", *dryRun).
		Msg("rotating audit trail")

	if *dryRun {
		log.Info().Msg("dry run: nothing deleted; run without -dry-run to rotate")
		return
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	auditRepo := postgres.NewAuditRepository(pool)
	deleted, err := auditRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Fatal().Err(err).Msg("delete audit entries")
	}

	log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("audit rotation finished")
}
