package domain

import "strings"

// Team es un equipo NBA con su nombre canónico y sus identificadores.
// Toda resolución de nombres pasa por este paquete: los feeds externos
// usan apodos, abreviaturas y variantes históricas, y los bugs de
// alias descoordinados se eliminan centralizando el lookup aquí.
type Team struct {
	ID       int
	Name     string // nombre canónico completo, único por equipo
	Nickname string
	Abbrev   string
}

var nbaTeams = [...]Team{
	{1610612737, "Atlanta Hawks", "Hawks", "ATL"},
	{1610612738, "Boston Celtics", "Celtics", "BOS"},
	{1610612751, "Brooklyn Nets", "Nets", "BKN"},
	{1610612766, "Charlotte Hornets", "Hornets", "CHA"},
	{1610612741, "Chicago Bulls", "Bulls", "CHI"},
	{1610612739, "Cleveland Cavaliers", "Cavaliers", "CLE"},
	{1610612742, "Dallas Mavericks", "Mavericks", "DAL"},
	{1610612743, "Denver Nuggets", "Nuggets", "DEN"},
	{1610612765, "Detroit Pistons", "Pistons", "DET"},
	{1610612744, "Golden State Warriors", "Warriors", "GSW"},
	{1610612745, "Houston Rockets", "Rockets", "HOU"},
	{1610612754, "Indiana Pacers", "Pacers", "IND"},
	{1610612746, "Los Angeles Clippers", "Clippers", "LAC"},
	{1610612747, "Los Angeles Lakers", "Lakers", "LAL"},
	{1610612763, "Memphis Grizzlies", "Grizzlies", "MEM"},
	{1610612748, "Miami Heat", "Heat", "MIA"},
	{1610612749, "Milwaukee Bucks", "Bucks", "MIL"},
	{1610612750, "Minnesota Timberwolves", "Timberwolves", "MIN"},
	{1610612740, "New Orleans Pelicans", "Pelicans", "NOP"},
	{1610612752, "New York Knicks", "Knicks", "NYK"},
	{1610612760, "Oklahoma City Thunder", "Thunder", "OKC"},
	{1610612753, "Orlando Magic", "Magic", "ORL"},
	{1610612755, "Philadelphia 76ers", "76ers", "PHI"},
	{1610612756, "Phoenix Suns", "Suns", "PHX"},
	{1610612757, "Portland Trail Blazers", "Trail Blazers", "POR"},
	{1610612758, "Sacramento Kings", "Kings", "SAC"},
	{1610612759, "San Antonio Spurs", "Spurs", "SAS"},
	{1610612761, "Toronto Raptors", "Raptors", "TOR"},
	{1610612762, "Utah Jazz", "Jazz", "UTA"},
	{1610612764, "Washington Wizards", "Wizards", "WAS"},
}

// aliases cubre variantes conocidas de los feeds que no coinciden con el
// nombre canónico, el apodo ni la abreviatura. Mantener esta tabla única:
// cada scraper con su propia copia fue fuente histórica de desacuerdos.
var aliases = map[string]string{
	"la clippers":           "Los Angeles Clippers",
	"philly 76ers":          "Philadelphia 76ers",
	"portland trailblazers": "Portland Trail Blazers",
	"blazers":               "Portland Trail Blazers",
	"sixers":                "Philadelphia 76ers",
	"wolves":                "Minnesota Timberwolves",
	"gs":                    "Golden State Warriors",
	"no":                    "New Orleans Pelicans",
	"ny":                    "New York Knicks",
	"pho":                   "Phoenix Suns",
	"sa":                    "San Antonio Spurs",
	"wsh":                   "Washington Wizards",
}

var (
	byName   = make(map[string]Team, len(nbaTeams))
	byNick   = make(map[string]Team, len(nbaTeams))
	byAbbrev = make(map[string]Team, len(nbaTeams))
)

func init() {
	for _, t := range nbaTeams {
		byName[strings.ToLower(t.Name)] = t
		byNick[strings.ToLower(t.Nickname)] = t
		byAbbrev[strings.ToLower(t.Abbrev)] = t
	}
}

// Teams devuelve los 30 equipos NBA.
func Teams() []Team {
	out := make([]Team, len(nbaTeams))
	copy(out, nbaTeams[:])
	return out
}

// CanonicalNames devuelve el set de nombres canónicos (30 entradas).
func CanonicalNames() map[string]bool {
	set := make(map[string]bool, len(nbaTeams))
	for _, t := range nbaTeams {
		set[t.Name] = true
	}
	return set
}

// IsCanonical devuelve true si name es exactamente un nombre canónico.
func IsCanonical(name string) bool {
	t, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return ok && t.Name == strings.TrimSpace(name)
}

// ResolveTeam resuelve un nombre en cualquier formato conocido — canónico,
// apodo, abreviatura o alias — al equipo correspondiente.
// El match es case-insensitive y nunca por substring: el matching parcial
// produjo falsos positivos en versiones anteriores del resolver.
func ResolveTeam(name string) (Team, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Team{}, false
	}
	if t, ok := byName[key]; ok {
		return t, true
	}
	if t, ok := byNick[key]; ok {
		return t, true
	}
	if t, ok := byAbbrev[key]; ok {
		return t, true
	}
	if canonical, ok := aliases[key]; ok {
		return byName[strings.ToLower(canonical)], true
	}
	return Team{}, false
}

// Canonicalize devuelve el nombre canónico para cualquier variante,
// o el input sin tocar si no se reconoce (el caller decide si eso es FAIL).
func Canonicalize(name string) string {
	if t, ok := ResolveTeam(name); ok {
		return t.Name
	}
	return strings.TrimSpace(name)
}
