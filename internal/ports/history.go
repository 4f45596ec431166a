package ports

import (
	"context"

	"github.com/alejandrodnm/courtline/internal/domain"
)

// AuditRun es una corrida de preflight persistida en el histórico.
type AuditRun struct {
	ID       string
	RunAt    string
	Mode     string
	Verdict  string
	Checks   int
	Warns    int
	Fails    int
	Duration float64 // segundos
}

// AuditHistory persiste el histórico de corridas de preflight.
type AuditHistory interface {
	ApplySchema(ctx context.Context) error

	// SaveRun registra una corrida terminada.
	SaveRun(ctx context.Context, status domain.AuditStatus, mode, verdict string, durationSec float64) error

	// RecentRuns devuelve las últimas n corridas, más reciente primero.
	RecentRuns(ctx context.Context, n int) ([]AuditRun, error)

	// Prune borra corridas con más de days días de antigüedad.
	Prune(ctx context.Context, days int) (int64, error)

	Close() error
}
