package feedback

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Fallback tries Primary within Timeout and uses Secondary when it fails.
type Fallback struct {
	primary   Generator
	secondary Generator
	timeout   time.Duration
	log       zerolog.Logger
}

func NewFallback(primary, secondary Generator, timeout time.Duration, log zerolog.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		timeout:   timeout,
		log:       log.With().Str("component", "feedback").Logger(),
	}
}

func (g *Fallback) Generate(ctx context.Context, in Input) (*Result, error) {
	pctx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := g.primary.Generate(pctx, in)
	if err == nil {
		return res, nil
	}

	g.log.Warn().Err(err).
		Int64("attempt_id", in.AttemptID).
		Int64("question_id", in.QuestionID).
		Msg("primary feedback generator failed, falling back")
	return g.secondary.Generate(ctx, in)
}
