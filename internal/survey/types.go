package survey

// Option is one of the four fixed agree/disagree choices, or OptionNone when
// no choice was resolved from the transcript.
type Option int

const (
	OptionNone Option = iota
	DefinitelyAgree
	SlightlyAgree
	SlightlyDisagree
	DefinitelyDisagree
)

// NoneLabel is the wire value persisted for an unresolved answer.
const NoneLabel = "none"

// Confidence constants sent with persisted answers. These are fixed values,
// not a real recognition confidence score.
const (
	MatchedConfidence   = 0.9
	UnmatchedConfidence = 0.0
)

// Label returns the canonical display label for the option.
func (o Option) Label() string {
	switch o {
	case DefinitelyAgree:
		return "Definitely Agree"
	case SlightlyAgree:
		return "Slightly Agree"
	case SlightlyDisagree:
		return "Slightly Disagree"
	case DefinitelyDisagree:
		return "Definitely Disagree"
	default:
		return NoneLabel
	}
}

// IsAgree reports whether the option is on the agree side of the scale.
func (o Option) IsAgree() bool {
	return o == DefinitelyAgree || o == SlightlyAgree
}

// Options lists the four selectable choices in their fixed enumeration order.
// This order is also the matcher's evaluation order.
func Options() [4]Option {
	return [4]Option{DefinitelyAgree, SlightlyAgree, SlightlyDisagree, DefinitelyDisagree}
}

// OptionFromLabel resolves a wire label back to an Option. Unknown labels
// resolve to OptionNone.
func OptionFromLabel(label string) Option {
	for _, o := range Options() {
		if o.Label() == label {
			return o
		}
	}
	return OptionNone
}

// Question is a single questionnaire item. Questions are immutable and loaded
// once from static configuration.
type Question struct {
	ID     int
	Prompt string
}

// Answer is the record created when the user confirms a question.
type Answer struct {
	QuestionID int
	Option     Option
	Transcript string
	Confidence float64
}
