package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/courtline/internal/domain"
)

// statusFile es el slot de un solo elemento donde vive el resultado del
// último preflight. Oculto a propósito: es estado interno, no un feed.
const statusFile = ".audit_status.json"

func (s *Store) statusPath() string {
	return filepath.Join(s.dir, statusFile)
}

// ReadStatus lee el slot de estado de auditoría. Slot ausente devuelve
// (nil, nil): que nunca se haya corrido un preflight no es un error.
func (s *Store) ReadStatus() (*domain.AuditStatus, error) {
	raw, err := os.ReadFile(s.statusPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger.ReadStatus: leer slot: %w", err)
	}
	var status domain.AuditStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("ledger.ReadStatus: parsear slot: %w", err)
	}
	return &status, nil
}

// WriteStatus sobreescribe el slot con el resultado de una corrida.
// Mismo patrón temporal+rename que los ledgers: el slot nunca queda a
// medio escribir.
func (s *Store) WriteStatus(status domain.AuditStatus) error {
	raw, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger.WriteStatus: serializar: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".audit_status-*.tmp")
	if err != nil {
		return fmt.Errorf("ledger.WriteStatus: crear temporal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger.WriteStatus: escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger.WriteStatus: cerrar temporal: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.statusPath()); err != nil {
		return fmt.Errorf("ledger.WriteStatus: renombrar: %w", err)
	}
	return nil
}
