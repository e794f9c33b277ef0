// Package metrics exposes prometheus counters for the generation pipeline.
// Counters only; scraping/export is owned by the embedding service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationAttempts counts provider generation attempts by content type and outcome.
	GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decoyforge",
		Name:      "generation_attempts_total",
		Help:      "Content generation attempts by content type and outcome.",
	}, []string{"content_type", "outcome"})

	// ValidationFailures counts rejections by validator name.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decoyforge",
		Name:      "validation_failures_total",
		Help:      "Validation rejections by validator.",
	}, []string{"validator"})

	// TokensMinted counts honeytokens minted by type.
	TokensMinted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decoyforge",
		Name:      "honeytokens_minted_total",
		Help:      "Honeytokens minted by token type.",
	}, []string{"token_type"})

	// TokensTriggered counts first observed external uses of planted tokens.
	TokensTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "decoyforge",
		Name:      "honeytokens_triggered_total",
		Help:      "Honeytokens transitioned to the triggered state.",
	})

	// FilesDeployed counts files written to decoy filesystems by status.
	FilesDeployed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decoyforge",
		Name:      "files_deployed_total",
		Help:      "Decoy files processed by deployment status.",
	}, []string{"status"})

	// ProviderLatency observes provider call latency in seconds.
	ProviderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "decoyforge",
		Name:      "provider_latency_seconds",
		Help:      "LLM provider call latency.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)
