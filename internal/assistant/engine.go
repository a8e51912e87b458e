// Package assistant runs an utterance through normalization, language
// detection, classification, temporal resolution, title extraction and
// action resolution, then hands the action to the executor.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/classifier"
	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/executor"
	"github.com/pbaille/memo/internal/intent"
	"github.com/pbaille/memo/internal/metrics"
	"github.com/pbaille/memo/internal/temporal"
	"github.com/pbaille/memo/internal/textnorm"
	"github.com/pbaille/memo/internal/title"
)

// Transcriber turns audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// LanguageDetector returns "zh", "en" or "" for text.
type LanguageDetector interface {
	Detect(text string) string
}

// Engine is safe for concurrent use; it holds no per-request state.
type Engine struct {
	classifier classifier.Classifier
	detector   LanguageDetector
	speech     Transcriber
	executor   *executor.Executor
	resolver   *temporal.Resolver
	threshold  float64
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces time.Now as the reference clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithThreshold sets the minimum probability for create labels.
func WithThreshold(t float64) Option {
	return func(e *Engine) { e.threshold = t }
}

// WithSpeech enables audio transcription.
func WithSpeech(t Transcriber) Option {
	return func(e *Engine) { e.speech = t }
}

// WithResolver replaces the default temporal cascade.
func WithResolver(r *temporal.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// New creates an engine. exec may be nil for analysis-only use.
func New(cls classifier.Classifier, det LanguageDetector, exec *executor.Executor, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		classifier: cls,
		detector:   det,
		executor:   exec,
		resolver:   temporal.New(),
		threshold:  intent.DefaultThreshold,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ErrNoSpeech is returned by Transcribe when no speech backend is set.
var ErrNoSpeech = errors.New("speech backend not configured")

// Analysis is every intermediate result for one utterance.
type Analysis struct {
	Utterance      domain.Utterance
	Classification classifier.Result
	Category       domain.Category
	Temporal       temporal.Resolution
	HasTime        bool
	Title          string
	Action         domain.Action
	Now            time.Time
}

// Transcribe converts audio to text.
func (e *Engine) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if e.speech == nil {
		return "", ErrNoSpeech
	}
	text, err := e.speech.Transcribe(ctx, filename, audio)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	e.logger.Debug("Transcription", zap.String("text", text))
	return text, nil
}

// Analyze resolves text without touching storage. The reference clock is
// read once.
func (e *Engine) Analyze(ctx context.Context, text string) (Analysis, error) {
	now := e.now()
	u := domain.Utterance{Raw: text, Normalized: textnorm.Normalize(text)}
	u.Language = e.detector.Detect(u.Normalized)

	res, err := e.classifier.Classify(ctx, u.Normalized, u.Language)
	switch {
	case errors.Is(err, classifier.ErrUnknownLanguage):
		e.logger.Warn("Unsupported language, classifying as Others", zap.String("text", u.Normalized))
		res = classifier.Result{Label: domain.Others}
	case err != nil:
		return Analysis{}, fmt.Errorf("classify: %w", err)
	}

	category := intent.EffectiveCategory(res.Label, res.Probability, e.threshold)
	if res.Label.IsCreate() && category == domain.Others {
		metrics.IncrementLowConfidence()
	}

	tr, ok := e.resolver.Resolve(u.Normalized, false, now)
	if ok {
		metrics.IncrementTemporal(string(tr.Source))
	} else {
		metrics.IncrementTemporal("none")
	}

	t := title.Extract(u.Normalized)
	action := intent.ResolveAction(intent.Input{
		Utterance: u,
		Category:  category,
		Temporal:  tr,
		HasTime:   ok,
		Title:     t,
		Now:       now,
	})
	metrics.IncrementAction(action.Kind.String(), string(action.Category))

	e.logger.Debug("Utterance analyzed",
		zap.String("normalized", u.Normalized),
		zap.String("language", u.Language),
		zap.String("label", string(res.Label)),
		zap.Float64("probability", res.Probability),
		zap.String("category", string(category)),
		zap.Bool("has_time", ok),
		zap.String("temporal_source", string(tr.Source)),
		zap.String("title", t),
	)

	return Analysis{
		Utterance:      u,
		Classification: res,
		Category:       category,
		Temporal:       tr,
		HasTime:        ok,
		Title:          t,
		Action:         action,
		Now:            now,
	}, nil
}

// Process analyzes text and executes the action for userID.
func (e *Engine) Process(ctx context.Context, userID int64, text string) (Response, error) {
	a, err := e.Analyze(ctx, text)
	if err != nil {
		return Response{}, err
	}
	if e.executor == nil {
		return NewResponse(a, executor.Outcome{}), nil
	}

	out, err := e.executor.Execute(ctx, userID, &a.Action)
	if err != nil {
		return Response{}, fmt.Errorf("execute %s: %w", a.Action.Kind, err)
	}
	return NewResponse(a, out), nil
}

// ClassifyCreate labels text for manual saving: only create labels above
// the threshold survive, everything else is Others.
func (e *Engine) ClassifyCreate(ctx context.Context, text string) (domain.Category, error) {
	normalized := textnorm.Normalize(text)
	res, err := e.classifier.Classify(ctx, normalized, e.detector.Detect(normalized))
	switch {
	case errors.Is(err, classifier.ErrUnknownLanguage):
		return domain.Others, nil
	case err != nil:
		return "", fmt.Errorf("classify: %w", err)
	}
	if !res.Label.IsCreate() || res.Probability < e.threshold {
		return domain.Others, nil
	}
	return res.Label, nil
}

// Executor exposes the executor for the save and confirm routes.
func (e *Engine) Executor() *executor.Executor {
	return e.executor
}

// Now reads the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}
