// Package ingest implements a Kafka-backed FeaturePairSource.
//
// WHAT IT DOES:
// KafkaSource consumes JSON-encoded {"item_id":..,"feature":".."}
// messages from a topic and yields them as FeaturePairs, one per
// message, blocking on FetchMessage until the next one arrives or ctx
// is cancelled.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nrumiano/bsets"
	"github.com/segmentio/kafka-go"
)

// KafkaSource streams FeaturePairs from a Kafka topic.
type KafkaSource struct {
	reader *kafka.Reader
	ctx    context.Context
	logger *slog.Logger
}

// NewKafkaSource creates a KafkaSource for cfg's topic and consumer
// group. ctx bounds every subsequent call to Next.
func NewKafkaSource(ctx context.Context, cfg bsets.KafkaConfig) *KafkaSource {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return &KafkaSource{
		reader: reader,
		ctx:    ctx,
		logger: slog.Default().With("component", "ingest.kafka", "topic", cfg.Topic),
	}
}

type wireFeaturePair struct {
	ItemID  int64  `json:"item_id"`
	Feature string `json:"feature"`
}

// Next implements bsets.FeaturePairSource. It returns ok=false once
// ctx is cancelled; a malformed message is logged and skipped rather
// than aborting the whole build.
func (s *KafkaSource) Next() (bsets.FeaturePair, bool, error) {
	for {
		msg, err := s.reader.FetchMessage(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return bsets.FeaturePair{}, false, nil
			}
			return bsets.FeaturePair{}, false, fmt.Errorf("ingest: fetching kafka message: %w", err)
		}

		var wp wireFeaturePair
		if err := json.Unmarshal(msg.Value, &wp); err != nil {
			s.logger.Warn("skipping malformed feature pair message", "error", err, "offset", msg.Offset)
			continue
		}
		if err := s.reader.CommitMessages(s.ctx, msg); err != nil {
			s.logger.Error("failed to commit message", "error", err, "offset", msg.Offset)
		}
		return bsets.FeaturePair{ItemID: wp.ItemID, Feature: wp.Feature}, true, nil
	}
}

// Close stops the consumer.
func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
