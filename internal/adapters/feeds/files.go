// Package feeds implementa el FeedStore sobre el directorio de artefactos
// que escriben los colectores externos. Los archivos son la interfaz entre
// procesos: este paquete solo lee, nunca escribe.
package feeds

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/courtline/internal/domain"
)

// Archivos de cada feed dentro del directorio.
var feedFiles = map[string]string{
	domain.FeedRatings:  "ratings.json",
	domain.FeedInjuries: "injuries.csv",
	domain.FeedImpact:   "impact.json",
	domain.FeedRest:     "rest.csv",
	domain.FeedOdds:     "odds.json",
	domain.FeedSchedule: "schedule.json",
	domain.FeedNews:     "news.json",
}

// Layouts de timestamp que producen los distintos colectores. Se prueban
// en orden; el primero que parsea gana.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
}

// FileStore lee los artefactos de feed desde un directorio plano.
type FileStore struct {
	dir string
}

// NewFileStore crea un FileStore sobre el directorio dado.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path devuelve la ruta del artefacto de un feed.
func (s *FileStore) Path(feed string) string {
	name, ok := feedFiles[feed]
	if !ok {
		return filepath.Join(s.dir, feed)
	}
	return filepath.Join(s.dir, name)
}

// Meta devuelve ruta, fuente y timestamp de un feed sin interpretar el
// payload completo. Para JSON lee solo el sobre; para CSV la línea de
// cabecera "# timestamp:".
func (s *FileStore) Meta(feed string) (domain.FeedMeta, error) {
	path := s.Path(feed)
	meta := domain.FeedMeta{Name: feed, Path: path}

	if _, err := os.Stat(path); err != nil {
		return meta, fmt.Errorf("feeds.Meta: stat %s: %w", feed, err)
	}

	if strings.HasSuffix(path, ".json") {
		var envelope struct {
			Timestamp string `json:"timestamp"`
			Source    string `json:"source"`
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return meta, fmt.Errorf("feeds.Meta: leer %s: %w", feed, err)
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return meta, fmt.Errorf("feeds.Meta: parsear sobre de %s: %w", feed, err)
		}
		meta.Source = envelope.Source
		meta.LastUpdated = parseTimestamp(envelope.Timestamp)
		return meta, nil
	}

	ts, err := csvHeaderTimestamp(path)
	if err != nil {
		return meta, fmt.Errorf("feeds.Meta: cabecera de %s: %w", feed, err)
	}
	meta.LastUpdated = ts
	return meta, nil
}

// Ratings parsea ratings.json a un mapa por nombre canónico.
func (s *FileStore) Ratings() (map[string]*domain.TeamRating, error) {
	var payload struct {
		Teams []struct {
			Name      string  `json:"name"`
			OffRating float64 `json:"off_rating"`
			DefRating float64 `json:"def_rating"`
			NetRating float64 `json:"net_rating"`
			Pace      float64 `json:"pace"`
			HomeNet   float64 `json:"home_net"`
			RoadNet   float64 `json:"road_net"`
		} `json:"teams"`
	}
	if err := s.readJSON(domain.FeedRatings, &payload); err != nil {
		return nil, err
	}

	out := make(map[string]*domain.TeamRating, len(payload.Teams))
	for _, t := range payload.Teams {
		name := domain.Canonicalize(t.Name)
		out[name] = &domain.TeamRating{
			Name: name, OffRating: t.OffRating, DefRating: t.DefRating,
			NetRating: t.NetRating, Pace: t.Pace,
			HomeNet: t.HomeNet, RoadNet: t.RoadNet,
		}
	}
	return out, nil
}

// Injuries parsea injuries.csv. Las filas cortas o vacías se descartan;
// los estados se devuelven tal cual para que el auditor los inspeccione.
func (s *FileStore) Injuries() ([]domain.Injury, error) {
	rows, err := s.readCSV(domain.FeedInjuries, 4)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Injury, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Injury{
			Team:   domain.Canonicalize(row[0]),
			Player: strings.TrimSpace(row[1]),
			Status: strings.TrimSpace(row[2]),
			Date:   strings.TrimSpace(row[3]),
		})
	}
	return out, nil
}

// Rest parsea rest.csv y completa a cero los equipos ausentes: un equipo
// que no aparece en el artefacto llega descansado, no es dato faltante.
func (s *FileStore) Rest() (map[string]*domain.RestPenalty, error) {
	rows, err := s.readCSV(domain.FeedRest, 2)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*domain.RestPenalty, 30)
	for _, row := range rows {
		name := domain.Canonicalize(row[0])
		penalty, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("feeds.Rest: penalización de %q: %w", name, err)
		}
		out[name] = &domain.RestPenalty{Team: name, Penalty: penalty}
	}
	for _, t := range domain.Teams() {
		if _, ok := out[t.Name]; !ok {
			out[t.Name] = &domain.RestPenalty{Team: t.Name, Penalty: 0}
		}
	}
	return out, nil
}

// Impacts parsea impact.json. Los equipos vienen keyed por ID numérico;
// se traducen a nombre canónico y los jugadores a lowercase para el
// lookup del star tax.
func (s *FileStore) Impacts() (map[string]domain.TeamImpacts, error) {
	var payload struct {
		Teams map[string]struct {
			Players map[string]float64 `json:"players"`
		} `json:"teams"`
	}
	if err := s.readJSON(domain.FeedImpact, &payload); err != nil {
		return nil, err
	}

	byID := make(map[int]string, 30)
	for _, t := range domain.Teams() {
		byID[t.ID] = t.Name
	}

	out := make(map[string]domain.TeamImpacts, len(payload.Teams))
	for idStr, team := range payload.Teams {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, fmt.Errorf("feeds.Impacts: team_id %q no numérico", idStr)
		}
		name, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("feeds.Impacts: team_id %d desconocido", id)
		}
		impacts := make(domain.TeamImpacts, len(team.Players))
		for player, raw := range team.Players {
			impacts[strings.ToLower(strings.TrimSpace(player))] = raw
		}
		out[name] = impacts
	}
	return out, nil
}

// Odds parsea odds.json keyed por "Away @ Home".
func (s *FileStore) Odds() (map[string]domain.GameOdds, error) {
	var payload struct {
		Games map[string]struct {
			Away          string             `json:"away"`
			Home          string             `json:"home"`
			AwayFull      string             `json:"away_full"`
			HomeFull      string             `json:"home_full"`
			ConsensusLine *float64           `json:"consensus_line"`
			Spreads       map[string]float64 `json:"spreads"`
			FetchedAt     string             `json:"fetched_at"`
		} `json:"games"`
	}
	if err := s.readJSON(domain.FeedOdds, &payload); err != nil {
		return nil, err
	}

	out := make(map[string]domain.GameOdds, len(payload.Games))
	for key, g := range payload.Games {
		odds := domain.GameOdds{
			Away: g.Away, Home: g.Home,
			AwayFull: g.AwayFull, HomeFull: g.HomeFull,
			Spreads:   g.Spreads,
			FetchedAt: parseTimestamp(g.FetchedAt),
		}
		if g.ConsensusLine != nil {
			odds.ConsensusLine = *g.ConsensusLine
			odds.HasConsensus = true
		}
		out[key] = odds
	}
	return out, nil
}

// Schedule parsea schedule.json a partidos por fecha.
func (s *FileStore) Schedule() (map[string][]domain.ScheduledGame, error) {
	var payload struct {
		Dates map[string]struct {
			Games []struct {
				Away string `json:"away"`
				Home string `json:"home"`
				Time string `json:"time"`
			} `json:"games"`
		} `json:"dates"`
	}
	if err := s.readJSON(domain.FeedSchedule, &payload); err != nil {
		return nil, err
	}

	out := make(map[string][]domain.ScheduledGame, len(payload.Dates))
	for date, day := range payload.Dates {
		games := make([]domain.ScheduledGame, 0, len(day.Games))
		for _, g := range day.Games {
			games = append(games, domain.ScheduledGame{
				Away: domain.Canonicalize(g.Away),
				Home: domain.Canonicalize(g.Home),
				Time: g.Time,
			})
		}
		out[date] = games
	}
	return out, nil
}

// News parsea news.json.
func (s *FileStore) News() ([]domain.Article, error) {
	var payload struct {
		Articles []struct {
			Title   string `json:"title"`
			Summary string `json:"summary"`
		} `json:"articles"`
	}
	if err := s.readJSON(domain.FeedNews, &payload); err != nil {
		return nil, err
	}
	out := make([]domain.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		out = append(out, domain.Article{Title: a.Title, Summary: a.Summary})
	}
	return out, nil
}

func (s *FileStore) readJSON(feed string, v any) error {
	raw, err := os.ReadFile(s.Path(feed))
	if err != nil {
		return fmt.Errorf("feeds: leer %s: %w", feed, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("feeds: parsear %s: %w", feed, err)
	}
	return nil
}

// readCSV lee un artefacto CSV saltando la cabecera "# timestamp:" y la
// fila de nombres de columna. minCols filtra filas incompletas.
func (s *FileStore) readCSV(feed string, minCols int) ([][]string, error) {
	f, err := os.Open(s.Path(feed))
	if err != nil {
		return nil, fmt.Errorf("feeds: abrir %s: %w", feed, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") || strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("feeds: escanear %s: %w", feed, err)
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("feeds: parsear %s: %w", feed, err)
	}

	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		if len(row) < minCols {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// looksLikeHeader detecta la fila de nombres de columna: ninguna celda
// numérica y la primera no resuelve a un equipo.
func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	if _, ok := domain.ResolveTeam(row[0]); ok {
		return false
	}
	for _, cell := range row {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return false
		}
	}
	return true
}

// csvHeaderTimestamp extrae el timestamp de la línea "# timestamp: ...".
func csvHeaderTimestamp(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			// sin cabecera de timestamp: se trata como timestamp ausente
			return time.Time{}, nil
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if strings.HasPrefix(strings.ToLower(rest), "timestamp:") {
			value := strings.TrimSpace(rest[len("timestamp:"):])
			return parseTimestamp(value), nil
		}
	}
	return time.Time{}, sc.Err()
}

// parseTimestamp prueba los layouts conocidos; si ninguno parsea devuelve
// el zero value, que aguas arriba se trata como stale.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
