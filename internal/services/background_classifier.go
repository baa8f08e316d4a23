package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// numericIDRe matches the variable numeric tokens (order IDs, references)
// that make otherwise identical descriptions look distinct.
var numericIDRe = regexp.MustCompile(`\d+`)

const idPlaceholder = "<id>"

// backgroundClassifier implements BackgroundClassifierInterface
type backgroundClassifier struct {
	client  ClassifierClientInterface
	logger  ImportLoggerInterface
	metrics MetricsRecorderInterface
	timeout time.Duration
}

// NewBackgroundClassifier creates the best-effort category resolver. It
// never returns an error and never blocks the import beyond its timeout.
func NewBackgroundClassifier(
	client ClassifierClientInterface,
	logger ImportLoggerInterface,
	metrics MetricsRecorderInterface,
	timeout time.Duration,
) BackgroundClassifierInterface {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &backgroundClassifier{
		client:  client,
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
	}
}

type classifyOutcome struct {
	categories map[string]string
	err        error
}

// Classify groups descriptions by canonical form, calls the classifier once
// for the distinct forms, and expands the result back to every original
// description. On failure or timeout it returns an empty map so callers
// fall back to the keyword heuristic.
func (b *backgroundClassifier) Classify(ctx context.Context, descriptions []string) map[string]string {
	if len(descriptions) == 0 {
		return map[string]string{}
	}

	canonicalFor := make(map[string]string, len(descriptions))
	distinct := make([]string, 0, len(descriptions))
	seen := make(map[string]struct{})

	for _, description := range descriptions {
		canonical := Canonicalize(description)
		canonicalFor[description] = canonical
		if _, ok := seen[canonical]; !ok {
			seen[canonical] = struct{}{}
			distinct = append(distinct, canonical)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	// Race the call against the timer. The buffered channel lets the losing
	// goroutine finish without being awaited.
	outcomes := make(chan classifyOutcome, 1)
	go func() {
		categories, err := b.client.ClassifyCanonical(callCtx, distinct)
		outcomes <- classifyOutcome{categories: categories, err: err}
	}()

	var byCanonical map[string]string
	select {
	case outcome := <-outcomes:
		if outcome.err != nil {
			b.logger.LogClassifierDegraded(ctx, uuid.Nil, outcome.err.Error())
			b.metrics.IncrementCounter("import.classifier.degraded", map[string]string{"reason": "error"})
			return map[string]string{}
		}
		byCanonical = outcome.categories
	case <-callCtx.Done():
		b.logger.LogClassifierDegraded(ctx, uuid.Nil, callCtx.Err().Error())
		b.metrics.IncrementCounter("import.classifier.degraded", map[string]string{"reason": "timeout"})
		return map[string]string{}
	}

	result := make(map[string]string, len(descriptions))
	for description, canonical := range canonicalFor {
		if category, ok := byCanonical[canonical]; ok && category != "" {
			result[description] = category
		}
	}
	return result
}

// Canonicalize collapses variable numeric tokens so near-duplicate
// descriptions share one classifier call.
func Canonicalize(description string) string {
	canonical := strings.ToUpper(strings.TrimSpace(description))
	canonical = numericIDRe.ReplaceAllString(canonical, idPlaceholder)
	return strings.Join(strings.Fields(canonical), " ")
}
