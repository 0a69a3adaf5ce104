package generation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"fotomagic/internal/domain"
	"fotomagic/internal/imaging"
	"fotomagic/internal/infra"
	"fotomagic/internal/providers/unify"
)

// JobClient is the remote provider surface the orchestrator drives.
type JobClient interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
	SubmitRestore(ctx context.Context, imageURL string) (unify.Job, error)
	SubmitAnimate(ctx context.Context, imageURL, prompt, motionID string) (unify.Job, error)
	AwaitCompletion(ctx context.Context, job unify.Job, kind unify.JobKind) (string, error)
}

// restoreLadder is the fallback sequence for restoration jobs. Only the
// provider's validation rejections advance it; animation jobs use the first
// rung only.
var restoreLadder = []imaging.Strategy{
	imaging.StrategyOriginal,
	imaging.StrategyNearest,
	imaging.StrategyFarthest,
}

// Orchestrator drives one generation request through transcoding, upload,
// submission and polling, retrying across crop strategies where the provider
// rejected the input shape. Invocations share no mutable state.
type Orchestrator struct {
	client JobClient
	logger infra.Logger
}

// New builds an orchestrator around the given provider client.
func New(client JobClient, logger infra.Logger) *Orchestrator {
	return &Orchestrator{client: client, logger: logger}
}

// Generate runs the request to a single terminal outcome. Attempts are
// strictly sequential; each one re-transcodes and re-uploads the source with
// its own strategy.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) domain.GenerationOutcome {
	ladder := restoreLadder
	if req.Capability == domain.CapabilityAnimate {
		ladder = restoreLadder[:1]
	}

	var lastErr error
	for attempt, strategy := range ladder {
		mediaURL, err := o.attempt(ctx, req, strategy)
		if err == nil {
			o.logger.Info().
				Str("capability", string(req.Capability)).
				Int("attempt", attempt).
				Msg("generation: completed")
			return domain.SuccessOutcome(mediaURL)
		}
		lastErr = err
		if !retryable(err) {
			break
		}
		o.logger.Warn().Err(err).
			Str("capability", string(req.Capability)).
			Int("attempt", attempt).
			Msg("generation: attempt rejected, trying next crop strategy")
	}

	code, message := domain.RemoteErrorParts(lastErr)
	o.logger.Error().Err(lastErr).
		Str("capability", string(req.Capability)).
		Msg("generation: failed")
	return domain.FailureOutcome(code, message)
}

// retryable reports whether the next ladder rung should be tried. Validation
// rejections are the dominant recoverable failure; a failed upload also gets
// a fresh chance with the next variant.
func retryable(err error) bool {
	return domain.IsValidationError(err) || errors.Is(err, domain.ErrUploadFailed)
}

func (o *Orchestrator) attempt(ctx context.Context, req domain.GenerationRequest, strategy imaging.Strategy) (string, error) {
	variant, err := imaging.Transcode(req.Image, strategy)
	if err != nil {
		return "", err
	}

	fileURL, err := o.client.Upload(ctx, uuid.NewString()+".jpg", variant)
	if err != nil {
		return "", err
	}

	var job unify.Job
	kind := unify.JobKindImage
	switch req.Capability {
	case domain.CapabilityAnimate:
		kind = unify.JobKindVideo
		job, err = o.client.SubmitAnimate(ctx, fileURL, req.Prompt, req.MotionID)
	default:
		job, err = o.client.SubmitRestore(ctx, fileURL)
	}
	if err != nil {
		return "", err
	}

	return o.client.AwaitCompletion(ctx, job, kind)
}
