package app

import "sync/atomic"

// Lifecycle is shared by the HTTP server and the bot runner. The bot flips
// the active flag; the status endpoints only read it.
type Lifecycle struct {
	botActive atomic.Bool
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

func (l *Lifecycle) SetBotActive(active bool) {
	l.botActive.Store(active)
}

func (l *Lifecycle) BotActive() bool {
	return l.botActive.Load()
}

// BotStatus renders the flag the way the status endpoints report it.
func (l *Lifecycle) BotStatus() string {
	if l.BotActive() {
		return "active"
	}
	return "inactive"
}
