package monitor

import "math/rand/v2"

// DefaultPrompts is the stock conversation-breaker set.
var DefaultPrompts = []string{
	"What's a small decision that changed your life?",
	"If you could teleport anywhere right now, where would you go?",
	"What's your dream meal if calories didn't exist?",
	"What's one hobby you could talk about for hours?",
	"Would you rather explore space or the deep sea?",
	"What's your go-to comfort movie?",
	"If you could meet your future self for one minute, what would you ask?",
	"What's one thing that instantly improves your day?",
	"If you could have any superpower for a day, what would it be?",
	"What's the weirdest food combination you secretly love?",
}

// pickPrompt selects uniformly at random. No cursor is kept between calls,
// so selection survives restarts unchanged.
func pickPrompt(prompts []string) string {
	if len(prompts) == 0 {
		return ""
	}
	return prompts[rand.IntN(len(prompts))]
}
