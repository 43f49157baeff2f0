package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlbertPrograms/nodecs-backend/internal/store"
)

// SweepWorker periodically evicts expired task tokens and exam
// sessions. Evicted sessions vanish without producing a result; every
// eviction is logged so operators can spot students who ran out the
// clock without finishing.
type SweepWorker struct {
	tokens   *store.TokenStore
	sessions *store.SessionStore
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewSweepWorker creates a new SweepWorker.
func NewSweepWorker(tokens *store.TokenStore, sessions *store.SessionStore, interval time.Duration, log zerolog.Logger) *SweepWorker {
	return &SweepWorker{
		tokens:   tokens,
		sessions: sessions,
		interval: interval,
		log:      log.With().Str("component", "sweep_worker").Logger(),
		now:      time.Now,
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *SweepWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs a single eviction pass over both stores.
func (w *SweepWorker) Sweep() {
	now := w.now()

	if n := w.tokens.SweepExpired(now); n > 0 {
		w.log.Info().Int("count", n).Msg("Expired task tokens evicted")
	}

	for _, session := range w.sessions.SweepExpired(now) {
		w.log.Warn().
			Str("username", session.Owner).
			Int64("exam_id", session.ExamID).
			Time("expired", session.ExpiryTime).
			Msg("Expired exam session evicted without result")
	}
}
