package history

// sqlite.go — histórico de corridas de preflight.
//
// Una fila por corrida, nada más: el detalle de cada check vive en la
// salida de consola del momento. La DB responde una sola pregunta:
// ¿cuándo fue la última vez que el pipeline estuvo sano y cuánto duró?
// Prune automático al arrancar para que nunca crezca sin límite.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/courtline/internal/domain"
	"github.com/alejandrodnm/courtline/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_runs (
    id           TEXT PRIMARY KEY,
    run_at       DATETIME NOT NULL,
    mode         TEXT     NOT NULL,
    verdict      TEXT     NOT NULL,
    checks       INTEGER  NOT NULL DEFAULT 0,
    warns        INTEGER  NOT NULL DEFAULT 0,
    fails        INTEGER  NOT NULL DEFAULT 0,
    duration_sec REAL     NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_at ON audit_runs(run_at DESC);
`

// retentionDays por defecto para Prune desde NewSQLiteHistory.
const retentionDays = 90

// SQLiteHistory implementa ports.AuditHistory usando SQLite (pure Go, sin CGo).
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory abre (o crea) la base en la ruta dada, aplica el
// schema y poda corridas viejas.
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history.NewSQLiteHistory: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	h := &SQLiteHistory{db: db}
	if err := h.ApplySchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	h.Prune(context.Background(), retentionDays)
	return h, nil
}

// ApplySchema crea las tablas si no existen.
func (h *SQLiteHistory) ApplySchema(ctx context.Context) error {
	if _, err := h.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("history.ApplySchema: %w", err)
	}
	return nil
}

// SaveRun registra una corrida terminada.
func (h *SQLiteHistory) SaveRun(ctx context.Context, status domain.AuditStatus, mode, verdict string, durationSec float64) error {
	if _, err := h.db.ExecContext(ctx, `
		INSERT INTO audit_runs (id, run_at, mode, verdict, checks, warns, fails, duration_sec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		status.ID, status.Timestamp.UTC(), mode, verdict,
		status.Checks, status.Warns, status.Fails, durationSec,
	); err != nil {
		return fmt.Errorf("history.SaveRun: insert %s: %w", status.ID, err)
	}
	return nil
}

// RecentRuns devuelve las últimas n corridas, más reciente primero.
func (h *SQLiteHistory) RecentRuns(ctx context.Context, n int) ([]ports.AuditRun, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, run_at, mode, verdict, checks, warns, fails, duration_sec
		FROM audit_runs
		ORDER BY run_at DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history.RecentRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []ports.AuditRun
	for rows.Next() {
		var r ports.AuditRun
		if err := rows.Scan(&r.ID, &r.RunAt, &r.Mode, &r.Verdict,
			&r.Checks, &r.Warns, &r.Fails, &r.Duration); err != nil {
			return nil, fmt.Errorf("history.RecentRuns: scan row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Prune borra corridas con más de days días y devuelve cuántas cayeron.
func (h *SQLiteHistory) Prune(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := h.db.ExecContext(ctx, `DELETE FROM audit_runs WHERE run_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history.Prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
