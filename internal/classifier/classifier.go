// Package classifier labels an utterance with one of the memo categories.
package classifier

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/domain"
)

// ErrUnknownLanguage is returned for languages without a model.
var ErrUnknownLanguage = errors.New("classifier: unsupported language")

// Result is the winning label and the full score map. Scores are
// probabilities over the labels the classifier considered.
type Result struct {
	Label       domain.Category
	Probability float64
	Scores      map[domain.Category]float64
}

// Classifier labels text written in lang ("zh" or "en").
type Classifier interface {
	Classify(ctx context.Context, text, lang string) (Result, error)
}

// Supported reports whether a classifier exists for lang.
func Supported(lang string) bool {
	return lang == "zh" || lang == "en"
}

// best picks the highest score. Ties go to the label listed first in
// domain.Categories so results are deterministic.
func best(scores map[domain.Category]float64) Result {
	res := Result{Label: domain.Others, Scores: scores}
	for _, c := range domain.Categories {
		if p, ok := scores[c]; ok && p > res.Probability {
			res.Label, res.Probability = c, p
		}
	}
	return res
}

// Fallback tries Primary and, when it fails for any reason other than an
// unsupported language, answers with Secondary.
type Fallback struct {
	Primary   Classifier
	Secondary Classifier
	Logger    *zap.Logger
}

func (f *Fallback) Classify(ctx context.Context, text, lang string) (Result, error) {
	res, err := f.Primary.Classify(ctx, text, lang)
	if err == nil || errors.Is(err, ErrUnknownLanguage) {
		return res, err
	}
	f.Logger.Warn("Primary classifier failed, using fallback", zap.Error(err))
	return f.Secondary.Classify(ctx, text, lang)
}
