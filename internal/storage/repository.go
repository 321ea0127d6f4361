// Package storage provides the SQLite backend for the payment snapshot
// repository. It mirrors the full-overwrite persistence model of the JSON
// file backend: Save replaces the whole table inside one transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mensalidades/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements ledger.Repository. Rows come back in insertion order;
// stored dates that no longer parse load as the zero date, matching the
// tolerance of the JSON backend.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT child_name, month, school, paid_on, display_date, amount_cents
		FROM payments ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var records []core.Payment
	for rows.Next() {
		var (
			p      core.Payment
			month  string
			paidOn string
		)
		if err := rows.Scan(&p.ChildName, &month, &p.School, &paidOn, &p.DisplayDate, &p.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Month = core.Month(month)
		if paidOn != "" {
			if d, err := core.ParseInternalDate(paidOn); err == nil {
				p.PaidOn = d
			}
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	slog.InfoContext(ctx, "Payments loaded from SQLite", "records", len(records))
	return records, nil
}

// Save implements ledger.Repository by replacing the full set in one
// transaction, so readers never observe a partial snapshot.
func (r *SQLiteRepository) Save(ctx context.Context, records []core.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments`); err != nil {
		return fmt.Errorf("clear payments: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO payments (position, child_name, month, school, paid_on, display_date, amount_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range records {
		_, err := stmt.ExecContext(ctx, i, p.ChildName, string(p.Month), p.School,
			p.PaidOn.Internal(), p.DisplayDate, p.Amount.Cents)
		if err != nil {
			return fmt.Errorf("insert payment %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payments: %w", err)
	}

	slog.InfoContext(ctx, "Payments saved to SQLite", "records", len(records))
	return nil
}
