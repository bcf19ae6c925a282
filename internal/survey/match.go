package survey

import "strings"

// synonyms maps each option to the spoken phrases that resolve to it, beyond
// the canonical label itself. Phrases are multi-word on purpose: a bare "agree"
// would also substring-match inside "disagree".
var synonyms = map[Option][]string{
	DefinitelyAgree: {
		"definitely agree",
		"strongly agree",
		"totally agree",
		"completely agree",
		"yes definitely",
		"absolutely yes",
	},
	SlightlyAgree: {
		"slightly agree",
		"somewhat agree",
		"kind of agree",
		"sort of agree",
		"a little agree",
	},
	SlightlyDisagree: {
		"slightly disagree",
		"somewhat disagree",
		"kind of disagree",
		"sort of disagree",
		"a little disagree",
	},
	DefinitelyDisagree: {
		"definitely disagree",
		"strongly disagree",
		"totally disagree",
		"completely disagree",
		"absolutely not",
		"no way",
	},
}

// Match resolves a raw transcript to one of the four options. The transcript is
// lowercased and trimmed, then each option is tested in the fixed enumeration
// order (DefinitelyAgree, SlightlyAgree, SlightlyDisagree, DefinitelyDisagree)
// for a substring hit on its canonical label or any configured synonym. The
// first hit wins; a transcript matching nothing returns (OptionNone, false).
// Absence of a match is a valid result, not an error.
func Match(transcript string) (Option, bool) {
	text := strings.ToLower(strings.TrimSpace(transcript))
	if text == "" {
		return OptionNone, false
	}

	for _, opt := range Options() {
		if strings.Contains(text, strings.ToLower(opt.Label())) {
			return opt, true
		}
		for _, phrase := range synonyms[opt] {
			if strings.Contains(text, phrase) {
				return opt, true
			}
		}
	}

	return OptionNone, false
}

// MatchConfidence returns the fixed confidence value to persist alongside a
// match result.
func MatchConfidence(matched bool) float64 {
	if matched {
		return MatchedConfidence
	}
	return UnmatchedConfidence
}
