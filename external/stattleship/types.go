package stattleship

// Envelope types for the games endpoint. Team rows arrive sideloaded and are
// joined to games through home_team_id/away_team_id.

type gamesEnvelope struct {
	Games []gameItem `json:"games"`
	Teams []teamItem `json:"teams"`
}

type gameItem struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Status        string `json:"status"`
	StartedAt     string `json:"started_at"`
	ScheduledAt   string `json:"scheduled_at"`
	HomeTeamID    string `json:"home_team_id"`
	AwayTeamID    string `json:"away_team_id"`
	HomeTeamScore *int   `json:"home_team_score"`
	AwayTeamScore *int   `json:"away_team_score"`
}

type teamItem struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}
