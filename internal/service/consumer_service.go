package service

import (
	"context"
	"encoding/json"

	"ai-meetnotes/internal/cache"
	"ai-meetnotes/internal/dto"
	"ai-meetnotes/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	listCache cache.SessionListCache
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	listCache cache.SessionListCache,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		listCache: listCache,
		logger:    logger,
	}
}

// Consume drops cached session lists as invalidation messages arrive.
// It returns once subscribed; processing stops when ctx ends.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SessionListInvalidatedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal invalidation message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// A malformed payload never becomes valid; do not redeliver it.
		msg.Ack()
		return
	}

	if err := cs.listCache.Invalidate(ctx, payload.UserId); err != nil {
		cs.logger.Warn("CONSUMER", "Failed to invalidate session list cache", map[string]interface{}{
			"user_id": payload.UserId,
			"error":   err.Error(),
		})
		// gochannel redelivers a Nack immediately; stale lists still expire by TTL.
		msg.Ack()
		return
	}

	cs.logger.Debug("CONSUMER", "Session list cache invalidated", map[string]interface{}{
		"user_id": payload.UserId,
	})
	msg.Ack()
}
