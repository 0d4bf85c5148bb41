package database

import (
	"fmt"
	"time"
)

// ArchiveOldData rolls raw samples older than rawDays into hourly_stats,
// deletes them, and prunes aggregates older than aggregateDays.
func (db *DB) ArchiveOldData(rawDays, aggregateDays int) error {
	archiveQuery := `
        INSERT OR IGNORE INTO hourly_stats (hour, target, total_samples, reachable_samples, avg_latency_ms, max_latency_ms, min_latency_ms, avg_jitter_ms, packet_loss_percent)
        SELECT
            strftime('%Y-%m-%d %H:00:00', timestamp) as hour,
            target,
            COUNT(*) as total_samples,
            SUM(CASE WHEN reachable THEN 1 ELSE 0 END) as reachable_samples,
            AVG(CASE WHEN reachable THEN latency_avg_ms ELSE NULL END) as avg_latency_ms,
            MAX(CASE WHEN reachable THEN latency_max_ms ELSE NULL END) as max_latency_ms,
            MIN(CASE WHEN reachable THEN latency_min_ms ELSE NULL END) as min_latency_ms,
            AVG(CASE WHEN reachable THEN jitter_ms ELSE NULL END) as avg_jitter_ms,
            AVG(packet_loss_percent) as packet_loss_percent
        FROM samples
        WHERE timestamp < ?
        GROUP BY hour, target
    `

	rawCutoff := cutoff(rawDays * 24)
	if _, err := db.Exec(archiveQuery, rawCutoff); err != nil {
		return fmt.Errorf("archiving old samples failed: %w", err)
	}

	if _, err := db.Exec(`DELETE FROM samples WHERE timestamp < ?`, rawCutoff); err != nil {
		return fmt.Errorf("pruning old samples failed: %w", err)
	}

	deleteStatsQuery := `DELETE FROM hourly_stats WHERE hour < ?`
	if _, err := db.Exec(deleteStatsQuery, cutoff(aggregateDays*24)); err != nil {
		return fmt.Errorf("pruning hourly stats failed: %w", err)
	}

	// Vacuum to reclaim space (run occasionally)
	if time.Now().Day() == 1 {
		_, err := db.Exec("VACUUM")
		return err
	}

	return nil
}
