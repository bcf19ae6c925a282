package navigator

import (
	"testing"

	"github.com/dhakal07/ai-health-agent/internal/survey"
)

func testQuestions(n int) []survey.Question {
	qs := make([]survey.Question, n)
	for i := range qs {
		qs[i] = survey.Question{ID: i + 1, Prompt: "prompt"}
	}
	return qs
}

func TestNavigator_NextClampedAtEnd(t *testing.T) {
	n := New(testQuestions(4))

	if n.Index() != 0 {
		t.Fatalf("start index = %d, want 0", n.Index())
	}

	for i := 0; i < 3; i++ {
		n.Next()
	}
	if n.Index() != 3 {
		t.Fatalf("after 3 Next() index = %d, want 3", n.Index())
	}
	if !n.AtEnd() {
		t.Error("expected AtEnd at last question")
	}

	n.Next()
	if n.Index() != 3 {
		t.Errorf("Next() at the last question moved to %d, want no-op", n.Index())
	}
}

func TestNavigator_BackClampedAtStart(t *testing.T) {
	n := New(testQuestions(3))

	n.Back()
	if n.Index() != 0 {
		t.Errorf("Back() at the first question moved to %d, want no-op", n.Index())
	}
}

func TestNavigator_ConfirmAdvancesAndRecords(t *testing.T) {
	n := New(testQuestions(3))

	answer := n.Confirm(survey.DefinitelyAgree, "I definitely agree with this")
	if answer.QuestionID != 1 {
		t.Errorf("answer.QuestionID = %d, want 1", answer.QuestionID)
	}
	if answer.Option != survey.DefinitelyAgree {
		t.Errorf("answer.Option = %v, want DefinitelyAgree", answer.Option)
	}
	if answer.Confidence != survey.MatchedConfidence {
		t.Errorf("answer.Confidence = %v, want %v", answer.Confidence, survey.MatchedConfidence)
	}
	if n.Index() != 1 {
		t.Errorf("index after confirm = %d, want 1", n.Index())
	}
	if n.Pending() != survey.OptionNone {
		t.Errorf("pending for fresh question = %v, want OptionNone", n.Pending())
	}
}

func TestNavigator_ConfirmAtLastQuestionDoesNotAdvance(t *testing.T) {
	n := New(testQuestions(2))

	n.Confirm(survey.SlightlyAgree, "somewhat agree")
	n.Confirm(survey.SlightlyDisagree, "somewhat disagree")

	if n.Index() != 1 {
		t.Errorf("index after confirming last question = %d, want 1", n.Index())
	}
}

func TestNavigator_RevisitRestoresPending(t *testing.T) {
	n := New(testQuestions(3))

	n.Confirm(survey.SlightlyAgree, "somewhat agree")
	n.Back()

	if n.Index() != 0 {
		t.Fatalf("index after back = %d, want 0", n.Index())
	}
	if n.Pending() != survey.SlightlyAgree {
		t.Errorf("pending on revisit = %v, want SlightlyAgree", n.Pending())
	}

	n.Next()
	n.Back()
	if n.Pending() != survey.SlightlyAgree {
		t.Errorf("pending after round-trip = %v, want SlightlyAgree", n.Pending())
	}
}

func TestNavigator_ReconfirmOverwrites(t *testing.T) {
	n := New(testQuestions(2))

	n.Confirm(survey.DefinitelyAgree, "definitely agree")
	n.Back()
	n.Confirm(survey.DefinitelyDisagree, "changed my mind, definitely disagree")

	a, ok := n.Answer(1)
	if !ok {
		t.Fatal("expected an answer for question 1")
	}
	if a.Option != survey.DefinitelyDisagree {
		t.Errorf("re-confirmed option = %v, want DefinitelyDisagree", a.Option)
	}
	if len(n.Answers()) != 1 {
		t.Errorf("expected 1 recorded answer, got %d", len(n.Answers()))
	}
}

func TestNavigator_SkipRecordsNone(t *testing.T) {
	n := New(testQuestions(3))

	answer := n.Skip()
	if answer.Option != survey.OptionNone {
		t.Errorf("skip option = %v, want OptionNone", answer.Option)
	}
	if answer.Transcript != "" {
		t.Errorf("skip transcript = %q, want empty", answer.Transcript)
	}
	if answer.Confidence != survey.UnmatchedConfidence {
		t.Errorf("skip confidence = %v, want %v", answer.Confidence, survey.UnmatchedConfidence)
	}
	if n.Index() != 1 {
		t.Errorf("index after skip = %d, want 1 (advances like confirm)", n.Index())
	}

	a, ok := n.Answer(1)
	if !ok || a.Option != survey.OptionNone {
		t.Errorf("recorded skip = %+v (ok=%v), want OptionNone record", a, ok)
	}
}

func TestNavigator_AnswersInQuestionOrder(t *testing.T) {
	n := New(testQuestions(3))

	n.Skip()                                         // q1
	n.Confirm(survey.SlightlyDisagree, "disagreed")  // q2
	n.Confirm(survey.DefinitelyAgree, "then agreed") // q3

	answers := n.Answers()
	if len(answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(answers))
	}
	for i, a := range answers {
		if a.QuestionID != i+1 {
			t.Errorf("answers[%d].QuestionID = %d, want %d", i, a.QuestionID, i+1)
		}
	}
}

func TestNavigator_AdvanceNeverDiscardsAnswers(t *testing.T) {
	n := New(testQuestions(4))

	n.Confirm(survey.DefinitelyAgree, "definitely agree")
	n.Skip()
	n.Confirm(survey.SlightlyDisagree, "slightly disagree")
	n.Back()
	n.Back()
	n.Back()
	n.Next()
	n.Next()
	n.Next()

	if len(n.Answers()) != 3 {
		t.Errorf("expected 3 answers preserved across moves, got %d", len(n.Answers()))
	}
}
