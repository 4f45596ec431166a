package ledger

import (
	"fmt"

	"github.com/alejandrodnm/courtline/internal/domain"
)

// El ledger cambió de esquema seis veces y los archivos viejos nunca se
// reescribieron; cada versión se identifica por su conteo de columnas.
// La migración es puramente posicional: cada columna histórica mapea a su
// posición canónica y las ausentes quedan vacías. Nada se infiere ni se
// recalcula al migrar.
var schemaVersions = map[int][]string{
	14: {
		"ID", "Away", "Home", "Fair", "Market", "Edge",
		"Kelly", "Pick", "Book", "Odds", "Bet", "Result", "Payout", "Notes",
	},
	18: {
		"ID", "Timestamp", "Away", "Home", "Fair", "Market", "Edge",
		"Kelly", "Confidence", "Pick", "Type", "Book", "Odds",
		"Bet", "ToWin", "Result", "Payout", "Notes",
	},
	20: {
		"ID", "Timestamp", "Away", "Home", "Fair", "Market", "Edge", "RawEdge", "EdgeCapped",
		"Kelly", "Confidence", "Pick", "Type", "Book", "Odds",
		"Bet", "ToWin", "Result", "Payout", "Notes",
	},
	21: {
		"ID", "Timestamp", "Away", "Home", "Fair", "Market", "Edge", "RawEdge", "EdgeCapped",
		"Kelly", "Confidence", "Pick", "Type", "Book", "Odds",
		"Bet", "ToWin", "Result", "Payout", "Notes", "ClosingLine",
	},
	22: {
		"ID", "Timestamp", "Away", "Home", "Fair", "Market", "Edge", "RawEdge", "EdgeCapped",
		"Kelly", "Confidence", "Pick", "Type", "Book", "Odds",
		"Bet", "ToWin", "Result", "Payout", "Notes", "ClosingLine", "CLV",
	},
	24: domain.CanonicalColumns(),
}

// ErrUnknownSchema marca un conteo de columnas fuera de la tabla de
// versiones. Se falla fuerte: adivinar el mapeo de un esquema desconocido
// corrompe datos en silencio.
type ErrUnknownSchema struct {
	Path    string
	Columns int
}

func (e ErrUnknownSchema) Error() string {
	return fmt.Sprintf("ledger: %s tiene %d columnas, no corresponde a ninguna versión conocida del esquema", e.Path, e.Columns)
}

// migrateRow mapea una fila de cualquier versión conocida al esquema
// vigente. Las filas ya canónicas se devuelven sin copiar.
func migrateRow(path string, row []string) ([]string, error) {
	canonical := schemaVersions[24]
	if len(row) == len(canonical) {
		return row, nil
	}
	cols, ok := schemaVersions[len(row)]
	if !ok {
		return nil, ErrUnknownSchema{Path: path, Columns: len(row)}
	}

	out := make([]string, len(canonical))
	for i, name := range cols {
		out[canonicalIndex[name]] = row[i]
	}
	return out, nil
}

var canonicalIndex = func() map[string]int {
	idx := make(map[string]int, 24)
	for i, name := range domain.CanonicalColumns() {
		idx[name] = i
	}
	return idx
}()

// isHeaderRow detecta la fila de nombres de columna de cualquier versión.
func isHeaderRow(row []string) bool {
	return len(row) > 0 && row[0] == "ID"
}
