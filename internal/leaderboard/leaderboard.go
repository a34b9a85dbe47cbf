package leaderboard

import (
	"sort"

	"github.com/google/uuid"
)

type View string

const (
	ViewOverall View = "overall"
	ViewWeekly  View = "weekly"
)

type LeaderboardEntry struct {
	ProfileID     uuid.UUID `json:"profileId"`
	DisplayName   string    `json:"displayName"`
	ParticipantID string    `json:"participantId"`
	TotalScore    int       `json:"totalScore"`
	QuizScore     int       `json:"quizScore"`
	EventScore    int       `json:"eventScore"`
	WeeklyScore   int       `json:"weeklyScore"`
	Rank          int       `json:"rank"`

	// Ordering keys for the requested view. For the overall view these
	// mirror the lifetime figures; for the weekly view they are the
	// windowed ones.
	viewScore int
	viewQuiz  int
	viewEvent int
}

// SetViewScores fixes the figures ranking will order by.
func (e *LeaderboardEntry) SetViewScores(total, quiz, event int) {
	e.viewScore = total
	e.viewQuiz = quiz
	e.viewEvent = event
}

type Leaderboard struct {
	View    View                `json:"view"`
	Entries []*LeaderboardEntry `json:"entries"`
	Total   int                 `json:"total"`
}

// Rank orders entries for a leaderboard view: profiles whose view score
// is zero are dropped, the rest are sorted descending by that score
// with ties broken by quiz score then event score (further ties keep
// input order), and 1-based positional ranks are assigned.
func Rank(entries []*LeaderboardEntry) []*LeaderboardEntry {
	ranked := make([]*LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e.viewScore == 0 {
			continue
		}
		ranked = append(ranked, e)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].viewScore != ranked[j].viewScore {
			return ranked[i].viewScore > ranked[j].viewScore
		}
		if ranked[i].viewQuiz != ranked[j].viewQuiz {
			return ranked[i].viewQuiz > ranked[j].viewQuiz
		}
		return ranked[i].viewEvent > ranked[j].viewEvent
	})

	for i, e := range ranked {
		e.Rank = i + 1
	}
	return ranked
}
