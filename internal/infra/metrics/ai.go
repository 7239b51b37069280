package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(chunksTranslatedTotal, chunkRetriesTotal, aiCallLatencyMs, charsTranslatedTotal) }

var chunksTranslatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "translation_chunks_total",
		Help: "Chunk translations, labeled by outcome ('success', 'failure').",
	},
	[]string{"outcome"},
)

var chunkRetriesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "translation_chunk_retries_total",
		Help: "Chunk attempts retried after an API or structural failure.",
	},
)

var aiCallLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ai_calls_latency_ms",
		Help:    "Text-generation call latency distribution in milliseconds.",
		Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
	},
	[]string{"model", "success"},
)

var charsTranslatedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "translation_characters_total",
		Help: "Sum of translated subtitle characters across completed tasks.",
	},
)

func IncChunk(outcome string) {
	chunksTranslatedTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncChunkRetry() { chunkRetriesTotal.Inc() }

func ObserveAICall(model string, latencyMs int, success bool) {
	aiCallLatencyMs.WithLabelValues(norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func AddCharsTranslated(n int) { charsTranslatedTotal.Add(float64(n)) }
