package speech

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dhakal07/ai-health-agent/internal/observability"
)

// defaultPhrases are the supportive utterances spoken after an idle period.
var defaultPhrases = []string{
	"Take your time, there's no rush.",
	"I'm still listening whenever you're ready.",
	"It's okay to think it over for a moment.",
	"Whenever you're ready, just say how much you agree or disagree.",
	"No pressure. You can also skip this question if you prefer.",
}

// Prompter speaks one supportive message when capture has been idle for a
// fixed period. Arming is the caller's responsibility; a fired prompt does not
// re-arm itself.
type Prompter struct {
	speaker Synthesizer
	delay   time.Duration
	phrases []string
	logger  zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
	rng   *rand.Rand
}

// NewPrompter creates a prompter that speaks through the given synthesizer
// after delay of silence. With no custom phrases the built-in set is used.
func NewPrompter(speaker Synthesizer, delay time.Duration, phrases ...string) *Prompter {
	if len(phrases) == 0 {
		phrases = defaultPhrases
	}
	return &Prompter{
		speaker: speaker,
		delay:   delay,
		phrases: phrases,
		logger:  observability.WithComponent("prompter"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Arm (re)starts the idle countdown. A countdown already running is replaced;
// a prompt that already fired is not repeated unless Arm is called again.
func (p *Prompter) Arm() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.fire)
}

// Cancel stops the countdown without firing. Safe to call when not armed.
func (p *Prompter) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// PromptNow speaks one supportive utterance immediately, outside the timer
// path. Used when capture ends with no option selected so the interaction
// never ends silently.
func (p *Prompter) PromptNow() {
	p.speak()
}

func (p *Prompter) fire() {
	p.mu.Lock()
	// Cancel may have raced the timer callback; a nil timer means the
	// countdown was stopped and the prompt must not fire.
	if p.timer == nil {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.mu.Unlock()

	p.speak()
}

func (p *Prompter) speak() {
	p.mu.Lock()
	phrase := p.phrases[p.rng.Intn(len(p.phrases))]
	p.mu.Unlock()

	if err := p.speaker.Speak(Utterance{Text: phrase}); err != nil {
		p.logger.Warn().Err(err).Msg("supportive prompt failed to play")
	}
}
