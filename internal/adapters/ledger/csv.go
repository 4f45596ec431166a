// Package ledger persiste las apuestas en ledgers CSV diarios.
// Los CSV son el formato deliberado: el operador los abre y los corrige
// a mano, así que el código tolera esquemas viejos al leer y solo
// reescribe archivos vía rename atómico.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/courtline/internal/domain"
)

const filePrefix = "wagers_"

// Store implementa ports.LedgerStore sobre un directorio de ledgers.
type Store struct {
	dir          string
	statusMaxAge time.Duration
}

// NewStore crea un Store sobre el directorio dado, creándolo si no existe.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ledger.NewStore: crear %s: %w", dir, err)
	}
	return &Store{dir: dir, statusMaxAge: defaultStatusMaxAge}, nil
}

// SetStatusMaxAge ajusta la ventana de vigencia del sello al registrar
// apuestas (audit.status_max_age_hours en config).
func (s *Store) SetStatusMaxAge(d time.Duration) {
	if d > 0 {
		s.statusMaxAge = d
	}
}

// Dir devuelve el directorio de ledgers.
func (s *Store) Dir() string { return s.dir }

// PathFor devuelve la ruta del ledger de un día.
func (s *Store) PathFor(day time.Time) string {
	return filepath.Join(s.dir, filePrefix+day.Format("2006-01-02")+".csv")
}

// List devuelve las rutas de todos los ledgers ordenadas por fecha.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("ledger.List: leer %s: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		out = append(out, filepath.Join(s.dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// Load lee un ledger migrando cada fila al esquema vigente en memoria.
// El archivo en disco no se toca; para eso está Backfill.
func (s *Store) Load(path string) ([]domain.WagerRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	out := make([]domain.WagerRecord, 0, len(rows))
	for _, row := range rows {
		migrated, err := migrateRow(path, row)
		if err != nil {
			return nil, fmt.Errorf("ledger.Load: %w", err)
		}
		w, err := domain.WagerFromRow(migrated)
		if err != nil {
			return nil, fmt.Errorf("ledger.Load: %s: %w", path, err)
		}
		out = append(out, w)
	}
	return out, nil
}

// Append registra una apuesta en el ledger del día. Si el sello de
// auditoría está vigente la fila nace sellada; si no, queda sin sello y
// el próximo preflight aprobado la sella.
func (s *Store) Append(w domain.WagerRecord, status *domain.AuditStatus, now time.Time) error {
	path := s.PathFor(now)

	existing, err := s.loadOrEmpty(path)
	if err != nil {
		return fmt.Errorf("ledger.Append: %w", err)
	}

	if w.ID == "" {
		w.ID = strconv.Itoa(nextID(existing))
	}
	if w.Timestamp == "" {
		w.Timestamp = domain.NewWagerTimestamp(now)
	}
	if w.Result == "" {
		w.Result = domain.ResultPending
	}
	if status != nil && status.Valid(now, s.statusMaxAge) {
		w.AuditCheck = status.StampValue()
		w.AuditNote = stampNote(*status)
	}

	existing = append(existing, w)
	if err := s.writeAtomic(path, existing); err != nil {
		return fmt.Errorf("ledger.Append: %w", err)
	}
	return nil
}

// defaultStatusMaxAge es la ventana de vigencia del sello si la config no
// define otra.
const defaultStatusMaxAge = 18 * time.Hour

// Stamp sella las filas sin sello de un ledger con el estado dado.
// Primer sello gana: las filas ya selladas conservan el suyo aunque el
// estado nuevo sea distinto.
func (s *Store) Stamp(path string, status domain.AuditStatus) (int, error) {
	records, err := s.Load(path)
	if err != nil {
		return 0, fmt.Errorf("ledger.Stamp: %w", err)
	}

	stamped := 0
	for i := range records {
		if records[i].Stamped() {
			continue
		}
		records[i].AuditCheck = status.StampValue()
		records[i].AuditNote = stampNote(status)
		stamped++
	}
	if stamped == 0 {
		return 0, nil
	}
	if err := s.writeAtomic(path, records); err != nil {
		return 0, fmt.Errorf("ledger.Stamp: %w", err)
	}
	return stamped, nil
}

// Backfill reescribe un ledger al esquema vigente en disco. Devuelve
// false sin tocar el archivo si ya estaba al día; correr dos veces
// produce bytes idénticos. now decide si el ledger es el del día.
func (s *Store) Backfill(path string, now time.Time) (bool, error) {
	rows, err := readRows(path)
	if err != nil {
		return false, fmt.Errorf("ledger.Backfill: %w", err)
	}

	upToDate := true
	migrated := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) != len(domain.CanonicalColumns()) {
			upToDate = false
		}
		m, err := migrateRow(path, row)
		if err != nil {
			return false, fmt.Errorf("ledger.Backfill: %w", err)
		}
		migrated = append(migrated, m)
	}
	if upToDate {
		return false, nil
	}

	isToday := strings.Contains(filepath.Base(path), now.Format("2006-01-02"))
	records := make([]domain.WagerRecord, 0, len(migrated))
	for _, row := range migrated {
		w, err := domain.WagerFromRow(row)
		if err != nil {
			return false, fmt.Errorf("ledger.Backfill: %s: %w", path, err)
		}
		// Las filas migradas sin sello reciben una nota de procedencia:
		// las de hoy aún pueden validarse con un preflight; las pasadas
		// no, porque los snapshots de feeds que las originaron ya no
		// existen.
		if !w.Stamped() && w.AuditNote == "" {
			if isToday {
				w.AuditNote = "correr preflight para validar"
			} else {
				w.AuditNote = "no verificable: snapshots de feeds no retenidos"
			}
		}
		records = append(records, w)
	}
	if err := s.writeAtomic(path, records); err != nil {
		return false, fmt.Errorf("ledger.Backfill: %w", err)
	}
	return true, nil
}

func (s *Store) loadOrEmpty(path string) ([]domain.WagerRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return s.Load(path)
}

// writeAtomic escribe el ledger completo a un temporal en el mismo
// directorio y lo renombra sobre el destino. Un crash a mitad de
// escritura nunca deja un ledger truncado.
func (s *Store) writeAtomic(path string, records []domain.WagerRecord) error {
	tmp, err := os.CreateTemp(s.dir, ".wagers-*.tmp")
	if err != nil {
		return fmt.Errorf("crear temporal: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(domain.CanonicalColumns()); err != nil {
		tmp.Close()
		return fmt.Errorf("escribir cabecera: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			tmp.Close()
			return fmt.Errorf("escribir fila %s: %w", rec.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cerrar temporal: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renombrar sobre %s: %w", path, err)
	}
	return nil
}

// readRows lee las filas de datos de un ledger, sin la cabecera.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsear %s: %w", path, err)
	}

	out := make([][]string, 0, len(all))
	for i, row := range all {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// nextID devuelve el siguiente ID numérico dentro del ledger del día.
func nextID(records []domain.WagerRecord) int {
	max := 0
	for _, r := range records {
		if id, err := strconv.Atoi(strings.TrimSpace(r.ID)); err == nil && id > max {
			max = id
		}
	}
	return max + 1
}

func stampNote(status domain.AuditStatus) string {
	return fmt.Sprintf("%s (%d checks, %d warns)",
		status.Timestamp.Format("2006-01-02 15:04"), status.Checks, status.Warns)
}
