package score

// Breakdown is a profile's score split by source. It is always
// recomputed from stored state; no total is persisted anywhere.
type Breakdown struct {
	QuizScore   int `json:"quizScore"`
	VideoScore  int `json:"videoScore"`
	SloganScore int `json:"sloganScore"`
	PuzzleScore int `json:"puzzleScore"`
	TotalScore  int `json:"totalScore"`
}

// EventScore is the non-quiz share: approved videos, approved slogans
// and puzzle credits combined. Used as the second tie-break when
// ordering leaderboards.
func (b Breakdown) EventScore() int {
	return b.VideoScore + b.SloganScore + b.PuzzleScore
}
