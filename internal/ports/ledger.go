package ports

import (
	"time"

	"github.com/alejandrodnm/courtline/internal/domain"
)

// LedgerStore persiste las apuestas en ledgers CSV diarios y el slot de
// estado de auditoría que las sella.
type LedgerStore interface {
	// List devuelve las rutas de todos los ledgers, ordenadas por fecha.
	List() ([]string, error)

	// Load lee un ledger, migrando filas de esquemas anteriores al
	// vigente en memoria. No reescribe el archivo.
	Load(path string) ([]domain.WagerRecord, error)

	// Append registra una apuesta en el ledger del día, sellándola con
	// el estado de auditoría vigente (o dejándola sin sello si status
	// es nil o está vencido).
	Append(w domain.WagerRecord, status *domain.AuditStatus, now time.Time) error

	// Stamp escribe el sello de auditoría en las filas sin sellar de un
	// ledger. Las filas ya selladas no se tocan: el primer sello gana.
	Stamp(path string, status domain.AuditStatus) (stamped int, err error)

	// Backfill reescribe un ledger al esquema vigente en disco.
	// Idempotente: un segundo backfill produce bytes idénticos. now
	// decide si el ledger es el del día para la nota de procedencia.
	Backfill(path string, now time.Time) (migrated bool, err error)

	// ReadStatus lee el slot de estado de auditoría.
	// Slot ausente no es error: devuelve (nil, nil).
	ReadStatus() (*domain.AuditStatus, error)

	// WriteStatus sobreescribe el slot de estado de auditoría.
	WriteStatus(status domain.AuditStatus) error
}
