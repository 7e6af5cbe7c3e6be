package mapper

import (
	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Group Mappers

func (m *ChatMapper) ChatGroupToEntity(g *model.ChatGroup) *entity.ChatGroup {
	if g == nil {
		return nil
	}
	return &entity.ChatGroup{
		Id:        g.Id,
		UserId:    g.UserId,
		SessionId: g.SessionId,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
}

func (m *ChatMapper) ChatGroupToModel(g *entity.ChatGroup) *model.ChatGroup {
	if g == nil {
		return nil
	}
	return &model.ChatGroup{
		Id:        g.Id,
		UserId:    g.UserId,
		SessionId: g.SessionId,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:        msg.Id,
		GroupId:   msg.GroupId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:        msg.Id,
		GroupId:   msg.GroupId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
