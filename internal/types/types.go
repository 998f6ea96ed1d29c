package types

// Outcome is the resolved direction of a trade: the token ran (RICH) or
// collapsed (RUG). Predictions use the same value space.
type Outcome string

const (
	OutcomeRich Outcome = "RICH"
	OutcomeRug  Outcome = "RUG"
)

type Prediction = Outcome

// Trade is one chart-pattern prediction unit, immutable once fetched.
type Trade struct {
	ID              string  `json:"id"`
	SnapshotDate    string  `json:"snapshot_date"`
	Timeframe       string  `json:"timeframe"`
	CutType         string  `json:"cut_type"`
	Difficulty      string  `json:"difficulty"`
	ChartCutImage   string  `json:"chart_cut_image"`
	ChartFinalImage string  `json:"chart_final_image"`
	Outcome         Outcome `json:"outcome"`
	ReturnPct       float64 `json:"return_pct"`
	ReasonShort     string  `json:"reason_short"`
	LessonTag       string  `json:"lesson_tag"`
}

// TradeResult records one settled wager.
type TradeResult struct {
	TradeID    string     `json:"trade_id"`
	BetAmount  float64    `json:"bet_amount"`
	Prediction Prediction `json:"prediction"`
	Outcome    Outcome    `json:"outcome"`
	PNL        float64    `json:"pnl"`
	IsCorrect  bool       `json:"is_correct"`
	ReturnPct  float64    `json:"return_pct"`
	Reason     string     `json:"reason"`
}

// RunStats is a point-in-time snapshot of a session.
type RunStats struct {
	Active       bool    `json:"active"`
	Balance      float64 `json:"balance"`
	TradeCount   int     `json:"trade_count"`
	CorrectCount int     `json:"correct_count"`
}

// ScoreSubmission is the payload for the leaderboard submit endpoint.
type ScoreSubmission struct {
	UUID         string  `json:"uuid"`
	FriendlyName string  `json:"friendly_name"`
	FinalSol     float64 `json:"final_sol"`
	CorrectCount int     `json:"correct_count"`
	Email        string  `json:"email,omitempty"`
}

type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	FriendlyName string  `json:"friendly_name"`
	Nickname     string  `json:"nickname,omitempty"`
	FinalSol     float64 `json:"final_sol"`
	CorrectCount int     `json:"correct_count"`
}

type Profile struct {
	UUID     string `json:"uuid"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
}
