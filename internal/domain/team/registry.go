package team

// Canonical team identifiers are lowercase nicknames ("patriots"). Every
// lookup table below resolves to one of these. The registry covers the 32
// franchises of the 2017 season, so raiders are still in Oakland and the
// rams and chargers share Los Angeles.

var nicknames = map[string]struct{}{
	"cardinals":  {},
	"falcons":    {},
	"ravens":     {},
	"bills":      {},
	"panthers":   {},
	"bears":      {},
	"bengals":    {},
	"browns":     {},
	"cowboys":    {},
	"broncos":    {},
	"lions":      {},
	"packers":    {},
	"texans":     {},
	"colts":      {},
	"jaguars":    {},
	"chiefs":     {},
	"chargers":   {},
	"rams":       {},
	"dolphins":   {},
	"vikings":    {},
	"patriots":   {},
	"saints":     {},
	"giants":     {},
	"jets":       {},
	"raiders":    {},
	"eagles":     {},
	"steelers":   {},
	"49ers":      {},
	"seahawks":   {},
	"buccaneers": {},
	"titans":     {},
	"redskins":   {},
}

var nicknameAliases = map[string]string{
	"cards":  "cardinals",
	"jags":   "jaguars",
	"pats":   "patriots",
	"niners": "49ers",
	"skins":  "redskins",
	"bucs":   "buccaneers",
}

// locations maps the surviving token of a city or region name to a nickname.
// Multi-word cities are keyed by whatever remains after noise stripping, so
// "green bay" is keyed by "green" and "kansas city" by "kansas".
var locations = map[string]string{
	"arizona":      "cardinals",
	"atlanta":      "falcons",
	"baltimore":    "ravens",
	"buffalo":      "bills",
	"carolina":     "panthers",
	"chicago":      "bears",
	"cincinnati":   "bengals",
	"cleveland":    "browns",
	"dallas":       "cowboys",
	"denver":       "broncos",
	"detroit":      "lions",
	"green":        "packers",
	"houston":      "texans",
	"indianapolis": "colts",
	"jacksonville": "jaguars",
	"kansas":       "chiefs",
	"miami":        "dolphins",
	"minnesota":    "vikings",
	"england":      "patriots",
	"orleans":      "saints",
	"oakland":      "raiders",
	"philadelphia": "eagles",
	"pittsburgh":   "steelers",
	"francisco":    "49ers",
	"seattle":      "seahawks",
	"tampa":        "buccaneers",
	"tennessee":    "titans",
	"washington":   "redskins",
}

var locationAliases = map[string]string{
	"ne":     "england",
	"philly": "philadelphia",
	"sf":     "francisco",
	"tampa":  "tampa",
	"pitt":   "pittsburgh",
	"nola":   "orleans",
	"indy":   "indianapolis",
	"cinci":  "cincinnati",
	"kc":     "kansas",
}

// abbreviations are the scoreboard codes used by score feeds and TV tickers.
var abbreviations = map[string]string{
	"ari": "cardinals",
	"atl": "falcons",
	"bal": "ravens",
	"buf": "bills",
	"car": "panthers",
	"chi": "bears",
	"cin": "bengals",
	"cle": "browns",
	"dal": "cowboys",
	"den": "broncos",
	"det": "lions",
	"gb":  "packers",
	"hou": "texans",
	"ind": "colts",
	"jax": "jaguars",
	"kc":  "chiefs",
	"lac": "chargers",
	"lar": "rams",
	"mia": "dolphins",
	"min": "vikings",
	"ne":  "patriots",
	"no":  "saints",
	"nyg": "giants",
	"nyj": "jets",
	"oak": "raiders",
	"phi": "eagles",
	"pit": "steelers",
	"sea": "seahawks",
	"sf":  "49ers",
	"tb":  "buccaneers",
	"ten": "titans",
	"was": "redskins",
}

// IsCanonical reports whether name is a registered canonical identifier.
func IsCanonical(name string) bool {
	_, ok := nicknames[name]
	return ok
}
