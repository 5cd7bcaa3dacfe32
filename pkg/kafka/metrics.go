package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_producer_messages_published_total",
		Help: "Messages successfully published",
	}, []string{"topic"})

	producerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_producer_publish_errors_total",
		Help: "Publish attempts that failed",
	}, []string{"topic"})

	consumerProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_consumer_messages_processed_total",
		Help: "Messages handled successfully",
	}, []string{"topic", "consumer_group"})

	consumerFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_consumer_messages_failed_total",
		Help: "Messages that exhausted handler retries",
	}, []string{"topic", "consumer_group"})

	consumerDuplicates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_consumer_messages_duplicate_total",
		Help: "Messages skipped because their event ID was already processed",
	}, []string{"consumer_group"})

	consumerDLQ = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_consumer_dlq_published_total",
		Help: "Messages forwarded to the dead-letter topic",
	}, []string{"topic", "consumer_group"})

	consumerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_consumer_processing_duration_seconds",
		Help:    "Handler latency including retries",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic", "consumer_group"})
)
