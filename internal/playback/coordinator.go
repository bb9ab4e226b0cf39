// Package playback bridges connectivity transitions to the audio
// player. The player itself is external; tapedeck only consumes the
// minimal transport surface it needs.
package playback

import (
	"log/slog"
	"sync"

	"github.com/vietddude/tapedeck/internal/core/domain"
)

// Player is the surface tapedeck requires of the audio engine.
type Player interface {
	IsPlaying() bool
	Pause()
	Play()
}

// Coordinator pauses playback when the archive becomes unreachable and
// resumes it when connectivity returns. The resume memory survives any
// number of outage cycles, and a manual pause during an outage clears
// it so the player never resumes over the user's intent.
type Coordinator struct {
	mu     sync.Mutex
	player Player
	resume bool
	log    *slog.Logger
}

// NewCoordinator creates a coordinator around the given player.
func NewCoordinator(player Player, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		player: player,
		log:    log.With("component", "playback"),
	}
}

// HandleStateChange is the connectivity observer callback. Register it
// with Monitor.OnStateChange.
func (c *Coordinator) HandleStateChange(state domain.ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch state {
	case domain.StateDisconnected:
		if c.player.IsPlaying() {
			c.player.Pause()
			c.resume = true
			c.log.Info("connection lost, playback paused")
		}
	case domain.StateConnected:
		if c.resume {
			c.resume = false
			c.player.Play()
			c.log.Info("connection restored, playback resumed")
		}
	}
}

// NotifyUserPause records a manual pause so a later reconnect does not
// auto-resume.
func (c *Coordinator) NotifyUserPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resume = false
}

// PendingResume reports whether playback will resume on the next
// reconnect.
func (c *Coordinator) PendingResume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resume
}
