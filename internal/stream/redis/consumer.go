package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/pipeline"
	"github.com/povarna/generative-ai-agents/rag-agent/internal/stream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultTopK = 3

var _ stream.StreamConsumer = (*Consumer)(nil)

// Consumer reads question events off a Redis stream, answers them through
// the pipeline, and publishes the answers to the answer stream.
type Consumer struct {
	client       *redis.Client
	stream       string
	answerStream string
	groupID      string
	consumerName string
	pipeline     *pipeline.Pipeline
	logger       *zerolog.Logger
}

func NewConsumer(client *redis.Client, cfg *stream.StreamConfig, pipe *pipeline.Pipeline, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:       client,
		stream:       cfg.Stream,
		answerStream: cfg.AnswerStream,
		groupID:      cfg.Group,
		consumerName: cfg.ConsumerName,
		pipeline:     pipe,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) Stop() error {
	// No-op
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("message received")

	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("missing payload field")
		c.ack(ctx, msg.ID)
		return
	}

	var event stream.QuestionEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("failed to decode message")
		c.ack(ctx, msg.ID) // bad message, ack to skip it
		return
	}

	topK := event.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	result := stream.AnswerEvent{EventID: event.EventID}

	answer, err := c.pipeline.Answer(ctx, event.Question, topK)
	if err != nil {
		c.logger.Error().Err(err).Str("event_id", event.EventID).Msg("pipeline failed")
		result.Error = err.Error()
	} else {
		result.Answer = answer.Answer
		for _, doc := range answer.SourceDocuments {
			result.Sources = append(result.Sources, doc.ID)
		}
	}

	c.publish(ctx, result)
	c.ack(ctx, msg.ID)
}

func (c *Consumer) publish(ctx context.Context, result stream.AnswerEvent) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Error().Err(err).Str("event_id", result.EventID).Msg("failed to encode answer event")
		return
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.answerStream,
		Values: map[string]any{"payload": string(payload)},
	}).Err(); err != nil {
		c.logger.Error().Err(err).Str("event_id", result.EventID).Msg("failed to publish answer event")
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("failed to ACK message")
	}
}
