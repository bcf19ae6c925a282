package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dhakal07/ai-health-agent/internal/config"
	"github.com/dhakal07/ai-health-agent/internal/navigator"
	"github.com/dhakal07/ai-health-agent/internal/observability"
	"github.com/dhakal07/ai-health-agent/internal/session"
	"github.com/dhakal07/ai-health-agent/internal/speech"
	"github.com/dhakal07/ai-health-agent/internal/survey"
)

// consoleSpeaker renders avatar speech on stdout. It stands in for a real
// text-to-speech backend while honoring the Synthesizer lifecycle hooks.
type consoleSpeaker struct{}

func (consoleSpeaker) Speak(u speech.Utterance) error {
	if u.OnStart != nil {
		u.OnStart()
	}
	fmt.Printf("\n[avatar] %s\n", u.Text)
	if u.OnEnd != nil {
		u.OnEnd()
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("api_base_url", cfg.APIBaseURL).
		Str("locale", cfg.Locale).
		Msg("Health Agent starting")

	client := session.NewClient(cfg.APIBaseURL, cfg.PersistDeadline(), cfg.HealthDeadline())
	ctrl := session.NewController(client)
	speaker := consoleSpeaker{}

	ctx := context.Background()

	if health, err := client.Health(ctx); err != nil {
		fmt.Println("Backend health check failed; answers may not persist until it recovers.")
	} else if !health.DB {
		fmt.Println("Backend is up but its database is unreachable.")
	}

	reader := bufio.NewScanner(os.Stdin)

	fmt.Print("This questionnaire records your agree/disagree answers. Start? (y/n) ")
	if !reader.Scan() || !strings.HasPrefix(strings.ToLower(strings.TrimSpace(reader.Text())), "y") {
		fmt.Println("No problem. Nothing was recorded.")
		return
	}

	if err := ctrl.Begin(ctx, cfg.Locale); err != nil {
		logger.Error().Err(err).Msg("session start failed")
		fmt.Println("Could not start a session with the backend. Please try again later.")
		os.Exit(1)
	}

	nav := navigator.New(survey.DefaultQuestions())
	speaker.Speak(speech.Utterance{Text: "Let's begin. Answer each statement with how much you agree or disagree."})
	printHelp()
	announce(nav, speaker)

	var pendingTranscript string
	for {
		fmt.Print("> ")
		if !reader.Scan() {
			break
		}
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(strings.ToLower(line))
		switch fields[0] {
		case "help":
			printHelp()

		case "listen":
			opt, transcript, ok, err := captureAnswer(ctx, cfg, speaker)
			if err != nil {
				if errors.Is(err, speech.ErrUnsupported) {
					fmt.Println("Voice capture is not configured; type your answer instead.")
				} else {
					fmt.Printf("Voice capture failed: %v\n", err)
				}
				continue
			}
			if ok {
				nav.SelectPending(opt)
				pendingTranscript = transcript
				fmt.Printf("Heard %q -> %s. Type 'confirm' to record it.\n", transcript, opt.Label())
			}

		case "confirm", "yes":
			confirmPending(ctx, ctrl, nav, speaker, pendingTranscript, logger)
			pendingTranscript = ""

		case "skip":
			pendingTranscript = ""
			answer := nav.Skip()
			persist(ctx, ctrl, answer, logger)
			fmt.Println("Question skipped.")
			announce(nav, speaker)

		case "next":
			pendingTranscript = ""
			nav.Next()
			announce(nav, speaker)

		case "back":
			pendingTranscript = ""
			nav.Back()
			announce(nav, speaker)

		case "review":
			for _, a := range nav.Answers() {
				fmt.Printf("  Q%d: %s\n", a.QuestionID, a.Option.Label())
			}

		case "chat":
			message := strings.TrimSpace(strings.TrimPrefix(line, "chat"))
			if message == "" {
				fmt.Println("Usage: chat <your question>")
				continue
			}
			answer, err := client.Chat(ctx, message)
			if err != nil {
				fmt.Println("Chat is unavailable right now; the questionnaire is unaffected.")
				continue
			}
			speaker.Speak(speech.Utterance{Text: answer})

		case "end", "done":
			finish(ctx, ctrl, speaker, logger)
			return

		case "quit", "exit":
			fmt.Println("Leaving without ending the session; recorded answers are kept on the backend.")
			return

		default:
			// Anything else is treated as a spoken answer transcript.
			opt, ok := survey.Match(line)
			observability.RecordMatch(ok)
			if ok {
				nav.SelectPending(opt)
				pendingTranscript = line
				fmt.Printf("Matched %s. Type 'confirm' to record it.\n", opt.Label())
			} else {
				fmt.Println("I didn't catch an agree/disagree answer there. Try e.g. \"I slightly disagree\", or 'skip'.")
			}
		}
	}
}

// captureAnswer runs one voice capture round: it streams transcripts until one
// matches an option, the backend ends the capture, or recognition fails. When
// capture ends without a match the prompter speaks immediately so the round
// never ends silently.
func captureAnswer(ctx context.Context, cfg *config.Config, speaker speech.Synthesizer) (survey.Option, string, bool, error) {
	type match struct {
		opt        survey.Option
		transcript string
	}

	rec := speech.NewBridge(cfg.SpeechBridgeURL)
	prompter := speech.NewPrompter(speaker, cfg.IdlePromptDelay())

	matches := make(chan match, 1)
	done := make(chan struct{})
	var once sync.Once

	capture := speech.NewCapture(rec, prompter, speech.Callbacks{
		OnPartial: func(text string) {
			fmt.Printf("  ... %s\n", text)
		},
		OnFinal: func(text string, confidence float64) {
			opt, ok := survey.Match(text)
			observability.RecordMatch(ok)
			if !ok {
				fmt.Printf("  heard %q - no option matched, still listening\n", text)
				return
			}
			select {
			case matches <- match{opt: opt, transcript: text}:
			default:
			}
		},
		OnListening: func(listening bool) {
			if listening {
				fmt.Println("  listening...")
			} else {
				once.Do(func() { close(done) })
			}
		},
		OnError: func(code speech.ErrorCode) {
			fmt.Printf("  recognition error: %s\n", code)
		},
	})

	if err := capture.Start(ctx); err != nil {
		return survey.OptionNone, "", false, err
	}

	select {
	case m := <-matches:
		capture.Stop()
		capture.Wait()
		return m.opt, m.transcript, true, nil
	case <-done:
		capture.Wait()
		prompter.PromptNow()
		return survey.OptionNone, "", false, nil
	}
}

// confirmPending records the pending selection for the current question and
// advances. Persistence failures are reported but never roll back the local
// answer.
func confirmPending(ctx context.Context, ctrl *session.Controller, nav *navigator.Navigator, speaker speech.Synthesizer, transcript string, logger zerolog.Logger) {
	pending := nav.Pending()
	if pending == survey.OptionNone {
		fmt.Println("Nothing selected yet. Say or type an answer first, or 'skip'.")
		return
	}

	wasLast := nav.AtEnd()
	answer := nav.Confirm(pending, transcript)
	persist(ctx, ctrl, answer, logger)
	fmt.Printf("Recorded %s for question %d.\n", answer.Option.Label(), answer.QuestionID)

	if wasLast {
		fmt.Println("That was the last question. Type 'end' to finish, or 'back' to revisit.")
		return
	}
	announce(nav, speaker)
}

func persist(ctx context.Context, ctrl *session.Controller, answer survey.Answer, logger zerolog.Logger) {
	if err := ctrl.RecordAnswer(ctx, answer); err != nil {
		if errors.Is(err, session.ErrPersistInFlight) {
			fmt.Println("Still saving the previous answer; this one is kept locally.")
			return
		}
		logger.Warn().Err(err).Int("question_id", answer.QuestionID).Msg("answer persist failed")
		fmt.Println("Saving to the backend failed; your answer is kept locally.")
	}
}

func finish(ctx context.Context, ctrl *session.Controller, speaker speech.Synthesizer, logger zerolog.Logger) {
	resp, err := ctrl.End(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("session end failed")
		fmt.Println("Could not end the session with the backend; your answers are still recorded there.")
		return
	}

	fmt.Printf("\nSession complete: %d answers recorded.\n", resp.Summary.Count)
	for _, a := range resp.Summary.Answers {
		fmt.Printf("  Q%d: %s\n", a.QuestionID, a.MappedOption)
	}
	speaker.Speak(speech.Utterance{Text: resp.Analysis.Note + " " + resp.Analysis.Guidance})
}

func announce(nav *navigator.Navigator, speaker speech.Synthesizer) {
	q := nav.Current()
	speaker.Speak(speech.Utterance{Text: fmt.Sprintf("Question %d of %d. %s", nav.Index()+1, nav.Len(), q.Prompt)})
	if pending := nav.Pending(); pending != survey.OptionNone {
		fmt.Printf("(previously answered: %s)\n", pending.Label())
	}
	fmt.Println("Options: Definitely Agree / Slightly Agree / Slightly Disagree / Definitely Disagree")
}

func printHelp() {
	fmt.Println(`Commands:
  listen          capture a spoken answer
  <free text>     type an answer, e.g. "I definitely agree"
  confirm         record the selected answer and move on
  skip            record no answer for this question
  next / back     move between questions
  review          show recorded answers
  chat <text>     ask the avatar a general wellness question
  end             finish and get your summary
  quit            leave without ending the session`)
}
