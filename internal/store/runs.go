package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"billcheck/internal/model"
)

// ErrRunNotFound 核对记录不存在
var ErrRunNotFound = errors.New("run not found")

// RunRecord 核对记录
type RunRecord struct {
	ID             string          `json:"id"`
	Mode           model.Mode      `json:"mode"`
	BillName       string          `json:"billName"`
	TotalRows      int             `json:"totalRows"`
	MatchedRows    int             `json:"matchedRows"`
	MismatchedRows int             `json:"mismatchedRows"`
	ErrorRows      int             `json:"errorRows"`
	TotalOrders    int             `json:"totalOrders"`
	TotalDiff      decimal.Decimal `json:"totalDiff"`
	OutputFile     string          `json:"outputFile"`
	StartedAt      time.Time       `json:"startedAt"`
	FinishedAt     time.Time       `json:"finishedAt"`
}

// InsertRun 写入核对记录
func (s *Store) InsertRun(r RunRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (
			id, mode, bill_name, total_rows, matched_rows, mismatched_rows, error_rows,
			total_orders, total_diff, output_file, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, string(r.Mode), r.BillName, r.TotalRows, r.MatchedRows, r.MismatchedRows, r.ErrorRows,
		r.TotalOrders, r.TotalDiff.String(), r.OutputFile, r.StartedAt.UTC(), r.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

const runColumns = `id, mode, bill_name, total_rows, matched_rows, mismatched_rows, error_rows,
	total_orders, total_diff, output_file, started_at, finished_at`

// ListRuns 最近的核对记录（按开始时间倒序）；limit <= 0 返回全部
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs failed: %w", err)
	}
	defer rows.Close()

	out := []RunRecord{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun 按 ID 读取核对记录
func (s *Store) GetRun(id string) (RunRecord, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (RunRecord, error) {
	var (
		r    RunRecord
		mode string
		diff string
	)
	err := sc.Scan(&r.ID, &mode, &r.BillName, &r.TotalRows, &r.MatchedRows, &r.MismatchedRows, &r.ErrorRows,
		&r.TotalOrders, &diff, &r.OutputFile, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan run failed: %w", err)
	}
	r.Mode = model.Mode(mode)
	if r.TotalDiff, err = decimal.NewFromString(diff); err != nil {
		return r, fmt.Errorf("parse total_diff %q: %w", diff, err)
	}
	return r, nil
}
