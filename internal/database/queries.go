package database

import (
	"database/sql"
	"time"

	"pingboard/internal/models"
)

// SaveSample stores one probe sample. Timestamps are normalized to UTC so
// range scans compare consistently.
func (db *DB) SaveSample(target string, sample models.Sample) error {
	query := `
        INSERT INTO samples (target, timestamp, reachable, latency_min_ms, latency_avg_ms, latency_max_ms, jitter_ms, packet_loss_percent)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := db.Exec(query,
		target,
		sample.Timestamp.UTC().Format(sqliteTimeLayout),
		sample.Reachable,
		ptrToNull(sample.LatencyMin),
		ptrToNull(sample.LatencyAvg),
		ptrToNull(sample.LatencyMax),
		ptrToNull(sample.Jitter),
		sample.PacketLoss,
	)
	return err
}

// History retrieves a target's samples for the trailing period, oldest first
func (db *DB) History(target string, periodHours int) (models.Series, error) {
	query := `
        SELECT timestamp, reachable, latency_min_ms, latency_avg_ms, latency_max_ms, jitter_ms, packet_loss_percent
        FROM samples
        WHERE target = ? AND timestamp >= ?
        ORDER BY timestamp ASC
        LIMIT 10000
    `

	rows, err := db.Query(query, target, cutoff(periodHours))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series models.Series
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			continue
		}
		series = append(series, s)
	}

	return series, rows.Err()
}

// Latest retrieves a target's most recent sample, nil when none exists
func (db *DB) Latest(target string) (*models.Sample, error) {
	query := `
        SELECT timestamp, reachable, latency_min_ms, latency_avg_ms, latency_max_ms, jitter_ms, packet_loss_percent
        FROM samples
        WHERE target = ?
        ORDER BY timestamp DESC
        LIMIT 1
    `

	s, err := scanSample(db.QueryRow(query, target))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// StatisticsFor aggregates a target's samples over the trailing period
func (db *DB) StatisticsFor(target string, periodHours int) (*models.Statistics, error) {
	query := `
        SELECT
            COUNT(*) as sample_count,
            SUM(CASE WHEN reachable THEN 1 ELSE 0 END) as reachable_count,
            MIN(CASE WHEN reachable THEN latency_min_ms ELSE NULL END) as min_latency,
            AVG(CASE WHEN reachable THEN latency_avg_ms ELSE NULL END) as avg_latency,
            MAX(CASE WHEN reachable THEN latency_max_ms ELSE NULL END) as max_latency,
            AVG(CASE WHEN reachable THEN jitter_ms ELSE NULL END) as avg_jitter,
            AVG(packet_loss_percent) as avg_loss
        FROM samples
        WHERE target = ? AND timestamp >= ?
    `

	since := cutoff(periodHours)

	var stats models.Statistics
	var reachableCount int
	var minLat, avgLat, maxLat, avgJitter, avgLoss sql.NullFloat64
	err := db.QueryRow(query, target, since).Scan(
		&stats.SampleCount, &reachableCount,
		&minLat, &avgLat, &maxLat, &avgJitter, &avgLoss)
	if err != nil {
		return nil, err
	}

	stats.LatencyMin = nullToPtr(minLat)
	stats.LatencyAvg = nullToPtr(avgLat)
	stats.LatencyMax = nullToPtr(maxLat)
	stats.JitterAvg = nullToPtr(avgJitter)
	if avgLoss.Valid {
		stats.PacketLossAvg = avgLoss.Float64
	}
	if stats.SampleCount > 0 {
		stats.UptimePercent = float64(reachableCount) * 100 / float64(stats.SampleCount)
	}

	outageQuery := `
        WITH runs AS (
            SELECT
                reachable,
                ROW_NUMBER() OVER (ORDER BY timestamp) -
                ROW_NUMBER() OVER (PARTITION BY reachable ORDER BY timestamp) as grp
            FROM samples
            WHERE target = ? AND timestamp >= ?
        )
        SELECT COUNT(DISTINCT grp) FROM runs WHERE reachable = 0
    `
	if err := db.QueryRow(outageQuery, target, since).Scan(&stats.OutageCount); err != nil {
		return nil, err
	}

	return &stats, nil
}

// Outages retrieves runs of consecutive unreachable samples, newest first
func (db *DB) Outages(target string, periodHours int) ([]models.Outage, error) {
	query := `
        WITH runs AS (
            SELECT
                timestamp,
                reachable,
                ROW_NUMBER() OVER (ORDER BY timestamp) -
                ROW_NUMBER() OVER (PARTITION BY reachable ORDER BY timestamp) as grp
            FROM samples
            WHERE target = ? AND timestamp >= ?
        )
        SELECT
            MIN(timestamp) as start_time,
            MAX(timestamp) as end_time,
            COUNT(*) as failed_samples
        FROM runs
        WHERE reachable = 0
        GROUP BY grp
        ORDER BY start_time DESC
        LIMIT 100
    `

	rows, err := db.Query(query, target, cutoff(periodHours))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outages []models.Outage
	for rows.Next() {
		o := models.Outage{Target: target}
		if err := rows.Scan(&o.StartTime, &o.EndTime, &o.FailedSamples); err != nil {
			continue
		}
		o.Duration = o.EndTime.Sub(o.StartTime).String()
		outages = append(outages, o)
	}

	return outages, rows.Err()
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (models.Sample, error) {
	var s models.Sample
	var minLat, avgLat, maxLat, jitter sql.NullFloat64
	err := row.Scan(&s.Timestamp, &s.Reachable, &minLat, &avgLat, &maxLat, &jitter, &s.PacketLoss)
	if err != nil {
		return s, err
	}
	s.LatencyMin = nullToPtr(minLat)
	s.LatencyAvg = nullToPtr(avgLat)
	s.LatencyMax = nullToPtr(maxLat)
	s.Jitter = nullToPtr(jitter)
	return s, nil
}

func cutoff(periodHours int) string {
	return time.Now().UTC().Add(-time.Duration(periodHours) * time.Hour).Format(sqliteTimeLayout)
}

func ptrToNull(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullToPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float64(v.Float64)
}
