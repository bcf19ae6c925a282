package survey

// Analysis is the trivial aggregate returned when a session ends. It is an
// educational illustration, not a clinical score.
type Analysis struct {
	Score    int     `json:"score"`
	Total    int     `json:"total"`
	Ratio    float64 `json:"ratio"`
	Note     string  `json:"note"`
	Guidance string  `json:"guidance"`
}

const scoreDisclaimer = "This is an educational demo, not a medical assessment."

// Score derives the aggregate for a session's answers: the score is the number
// of agree-side answers, the total counts every answer that resolved to an
// option, and the ratio is score over total (zero when nothing resolved).
func Score(options []Option) Analysis {
	score := 0
	total := 0
	for _, o := range options {
		if o == OptionNone {
			continue
		}
		total++
		if o.IsAgree() {
			score++
		}
	}

	ratio := 0.0
	if total > 0 {
		ratio = float64(score) / float64(total)
	}

	a := Analysis{
		Score: score,
		Total: total,
		Ratio: ratio,
	}

	switch {
	case total == 0:
		a.Note = "No answers were resolved in this session."
		a.Guidance = "Try the questionnaire again and answer each question out loud or by tapping an option. " + scoreDisclaimer
	case ratio >= 0.7:
		a.Note = "You agreed with most of the statements."
		a.Guidance = "If any of these statements describe persistent difficulties, consider discussing them with a clinician. " + scoreDisclaimer
	case ratio >= 0.3:
		a.Note = "You agreed with some of the statements."
		a.Guidance = "Mixed responses are common. Revisit any question you were unsure about. " + scoreDisclaimer
	default:
		a.Note = "You disagreed with most of the statements."
		a.Guidance = "Thanks for completing the questionnaire. " + scoreDisclaimer
	}

	return a
}
