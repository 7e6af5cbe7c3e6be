package service

import (
	"context"
	"encoding/json"

	"ai-meetnotes/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	InvalidateSessionList(ctx context.Context, userID string) error
}

type publisherService struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewPublisherService(pubSub *gochannel.GoChannel, topicName string) IPublisherService {
	return &publisherService{
		pubSub:    pubSub,
		topicName: topicName,
	}
}

func (ps *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}

// InvalidateSessionList announces that a user's cached session lists are stale.
func (ps *publisherService) InvalidateSessionList(ctx context.Context, userID string) error {
	payload, err := json.Marshal(dto.SessionListInvalidatedMessage{UserId: userID})
	if err != nil {
		return err
	}
	return ps.Publish(ctx, payload)
}
