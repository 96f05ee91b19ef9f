package httpapi

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/thecommish/pickem/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const helpText = "Use this command to manage your pick'em selections.  " +
	"Either `pick [team]` to make a pick, `record` to check your record, " +
	"or `standings` to check standings."

// formatSubmitResult phrases a pick verdict as a Slack reply.
func formatSubmitResult(result usecase.SubmitResult) string {
	switch result.Verdict {
	case usecase.VerdictAccepted:
		return fmt.Sprintf(":ok_hand: OK, you've picked the %s for week %d", capitalizeTeam(result.Team), result.Week)
	case usecase.VerdictStatus:
		if result.Standing != nil {
			return fmt.Sprintf(":eyes: You've got the %s for week %d.", capitalizeTeam(result.StandingTeam), result.Week)
		}
		return ":persevere: You didn't tell me which team you want to pick. Try `/pickem pick [team name]`."
	case usecase.VerdictUnknownTeam:
		return ":confused: I don't know that team. Try again."
	case usecase.VerdictSeasonEnded:
		return ":checkered_flag: The season is over. See you next year!"
	case usecase.VerdictTeamAlreadyUsed:
		return fmt.Sprintf(":no_good: You already picked %s in week %d.", capitalizeTeam(result.Team), result.ConflictWeek)
	case usecase.VerdictLockedIn:
		return fmt.Sprintf(":lock: Too late, your %s pick for week %d is locked in; that game already started.", capitalizeTeam(result.StandingTeam), result.Week)
	case usecase.VerdictTeamNotPlaying:
		return fmt.Sprintf(":thinking_face: The %s don't play in week %d. Try again.", capitalizeTeam(result.Team), result.Week)
	case usecase.VerdictGameAlreadyStarted:
		return fmt.Sprintf(":no_good: Too late! The %s game already started.", capitalizeTeam(result.Team))
	default:
		return ":persevere: Something went sideways. Try again."
	}
}

// formatStandings renders the monospace leaderboard table the channel sees.
func formatStandings(week int, rows []usecase.StandingsRow) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "Standings as of week %d are:\n\n", week)
	_, _ = fmt.Fprintf(buf, "`%-10s %5s`\n", "Name", "Wins")
	_, _ = buf.WriteString("`" + strings.Repeat("-", 16) + "`")
	for _, row := range rows {
		_, _ = fmt.Fprintf(buf, "\n`%-10s %5d`", row.UserName, row.Wins)
	}

	return buf.String()
}

// formatRecord renders a user's season so far, one line per week.
func formatRecord(entries []usecase.RecordEntry) string {
	if len(entries) == 0 {
		return "No record yet!"
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	wins := 0
	losses := 0
	for _, entry := range entries {
		if !entry.Resolved {
			continue
		}
		if entry.Won {
			wins++
		} else {
			losses++
		}
	}

	_, _ = fmt.Fprintf(buf, "Your record so far is %d-%d:", wins, losses)
	for _, entry := range entries {
		_, _ = fmt.Fprintf(buf, "\n`Week %2d: %-12s %s`", entry.Week, capitalizeTeam(entry.Team), recordMark(entry))
	}

	return buf.String()
}

func recordMark(entry usecase.RecordEntry) string {
	if !entry.Resolved {
		return "pending"
	}
	if entry.Won {
		return "W"
	}
	return "L"
}

func capitalizeTeam(team string) string {
	if team == "" {
		return team
	}
	runes := []rune(team)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
