package navigator

import (
	"github.com/dhakal07/ai-health-agent/internal/survey"
)

// Navigator holds the ordered question list, the current position and the
// answers recorded so far. Moving around never discards a previously recorded
// answer; re-confirming a question overwrites its prior record. All state is
// in-memory and session-local.
type Navigator struct {
	questions []survey.Question
	idx       int
	answers   map[int]survey.Answer
	pending   survey.Option
}

// New creates a navigator positioned at the first question. Panics if the
// question set is empty; the static set is validated at startup.
func New(questions []survey.Question) *Navigator {
	if len(questions) == 0 {
		panic("navigator: empty question set")
	}
	return &Navigator{
		questions: questions,
		answers:   make(map[int]survey.Answer),
	}
}

// Current returns the question at the current position.
func (n *Navigator) Current() survey.Question {
	return n.questions[n.idx]
}

// Index returns the 0-based current position.
func (n *Navigator) Index() int {
	return n.idx
}

// Len returns the number of questions.
func (n *Navigator) Len() int {
	return len(n.questions)
}

// AtEnd reports whether the current position is the last question.
func (n *Navigator) AtEnd() bool {
	return n.idx == len(n.questions)-1
}

// Pending returns the in-progress, unconfirmed selection for the current
// question.
func (n *Navigator) Pending() survey.Option {
	return n.pending
}

// SelectPending sets the in-progress selection shown to the user. It writes
// nothing to the answer map and persists nothing.
func (n *Navigator) SelectPending(opt survey.Option) {
	n.pending = opt
}

// Confirm records the pending option and transcript for the current question,
// then advances. At the last question the position is left unchanged; the
// caller decides what happens next. The recorded answer is returned so the
// caller can route it to persistence.
func (n *Navigator) Confirm(opt survey.Option, transcript string) survey.Answer {
	answer := survey.Answer{
		QuestionID: n.Current().ID,
		Option:     opt,
		Transcript: transcript,
		Confidence: survey.MatchConfidence(opt != survey.OptionNone),
	}
	n.answers[answer.QuestionID] = answer
	n.advance()
	return answer
}

// Skip records an unresolved answer for the current question and advances
// exactly like Confirm.
func (n *Navigator) Skip() survey.Answer {
	return n.Confirm(survey.OptionNone, "")
}

// Next moves forward one question, clamped at the last. The pending selection
// is reloaded from any prior answer for the destination question.
func (n *Navigator) Next() {
	if n.idx < len(n.questions)-1 {
		n.idx++
	}
	n.reloadPending()
}

// Back moves back one question, clamped at the first. The pending selection is
// reloaded from any prior answer for the destination question.
func (n *Navigator) Back() {
	if n.idx > 0 {
		n.idx--
	}
	n.reloadPending()
}

// Answer returns the recorded answer for a question id, if any.
func (n *Navigator) Answer(questionID int) (survey.Answer, bool) {
	a, ok := n.answers[questionID]
	return a, ok
}

// Answers returns the recorded answers in question order. Unanswered questions
// are omitted.
func (n *Navigator) Answers() []survey.Answer {
	out := make([]survey.Answer, 0, len(n.answers))
	for _, q := range n.questions {
		if a, ok := n.answers[q.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// advance moves forward after a confirm/skip and pre-loads the pending
// selection for the destination question.
func (n *Navigator) advance() {
	if n.idx < len(n.questions)-1 {
		n.idx++
	}
	n.reloadPending()
}

func (n *Navigator) reloadPending() {
	if a, ok := n.answers[n.Current().ID]; ok {
		n.pending = a.Option
	} else {
		n.pending = survey.OptionNone
	}
}
