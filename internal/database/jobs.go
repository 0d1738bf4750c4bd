package database

import (
	"context"
	"database/sql"
	"time"
)

// JobRecord is the persisted terminal state of one transcode job.
type JobRecord struct {
	ID         string `json:"id"`
	SourcePath string `json:"sourcePath"`
	Quality    string `json:"quality"`
	Format     string `json:"format"`
	OutputPath string `json:"outputPath,omitempty"`
	State      string `json:"state"`
	Error      string `json:"error,omitempty"`
	Cached     bool   `json:"cached"`
	CreatedAt  int64  `json:"createdAt"`
	FinishedAt int64  `json:"finishedAt"`
}

// RecordJob persists a terminal job record.
func (d *Database) RecordJob(ctx context.Context, rec JobRecord) error {
	start := time.Now()
	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO jobs
			(id, source_path, quality, format, output_path, state, error, cached, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourcePath, rec.Quality, rec.Format,
		nullable(rec.OutputPath), rec.State, nullable(rec.Error),
		boolToInt(rec.Cached), rec.CreatedAt, rec.FinishedAt)
	observeQuery("record_job", start, err)
	return err
}

// RecentJobs returns up to limit terminal job records, newest first.
func (d *Database) RecentJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	start := time.Now()
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, source_path, quality, format, output_path, state, error, cached, created_at, finished_at
		FROM jobs ORDER BY finished_at DESC LIMIT ?`, limit)
	observeQuery("recent_jobs", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var rec JobRecord
		var output, errMsg sql.NullString
		var cached int
		if err := rows.Scan(&rec.ID, &rec.SourcePath, &rec.Quality, &rec.Format,
			&output, &rec.State, &errMsg, &cached, &rec.CreatedAt, &rec.FinishedAt); err != nil {
			return nil, err
		}
		rec.OutputPath = output.String
		rec.Error = errMsg.String
		rec.Cached = cached != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
