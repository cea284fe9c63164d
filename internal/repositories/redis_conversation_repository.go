package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"secdocs/internal/models"
)

const (
	conversationKeyPrefix   = "conversation:"
	conversationCounterKey  = "conversations:next_id"
	conversationOwnerPrefix = "conversations:owner:" // set of conversation IDs per owner
	messageKeyPrefix        = "message:"
	messageCounterKey       = "messages:next_id"
	conversationMsgsSuffix  = ":messages" // list of message IDs in creation order
)

// RedisConversationRepository implements ConversationRepository on Redis.
// conversation:{id}:messages is a list of message IDs appended in creation
// order, which is the canonical replay order.
type RedisConversationRepository struct {
	client *redis.Client
}

// NewRedisConversationRepository creates a Redis-backed conversation repository.
func NewRedisConversationRepository(client *redis.Client) *RedisConversationRepository {
	return &RedisConversationRepository{
		client: client,
	}
}

func conversationKey(id int64) string {
	return conversationKeyPrefix + strconv.FormatInt(id, 10)
}

func conversationMessagesKey(id int64) string {
	return conversationKeyPrefix + strconv.FormatInt(id, 10) + conversationMsgsSuffix
}

func messageKey(id int64) string {
	return messageKeyPrefix + strconv.FormatInt(id, 10)
}

// Create starts a new conversation for an owner.
func (r *RedisConversationRepository) Create(ctx context.Context, title string, ownerID int64) (*models.Conversation, error) {
	id, err := r.client.Incr(ctx, conversationCounterKey).Result()
	if err != nil {
		return nil, NewConversationRepositoryError("create", 0, err, "")
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        id,
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	convJSON, err := json.Marshal(conv)
	if err != nil {
		return nil, NewConversationRepositoryError("create", id, err, "failed to marshal conversation")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, conversationKey(id), convJSON, 0)
	pipe.SAdd(ctx, conversationOwnerPrefix+strconv.FormatInt(ownerID, 10), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, NewConversationRepositoryError("create", id, err, "failed to execute transaction")
	}

	return conv, nil
}

// Get retrieves a conversation by ID.
func (r *RedisConversationRepository) Get(ctx context.Context, id int64) (*models.Conversation, error) {
	convJSON, err := r.client.Get(ctx, conversationKey(id)).Result()
	if err == redis.Nil {
		return nil, ConversationNotFoundError("get", id)
	}
	if err != nil {
		return nil, NewConversationRepositoryError("get", id, err, "")
	}

	var conv models.Conversation
	if err := json.Unmarshal([]byte(convJSON), &conv); err != nil {
		return nil, NewConversationRepositoryError("get", id, err, "failed to unmarshal conversation")
	}
	return &conv, nil
}

// ListByOwner returns the owner's conversations, most recently updated first.
func (r *RedisConversationRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Conversation, error) {
	ids, err := r.client.SMembers(ctx, conversationOwnerPrefix+strconv.FormatInt(ownerID, 10)).Result()
	if err != nil {
		return nil, NewConversationRepositoryError("list_by_owner", 0, err, "")
	}
	if len(ids) == 0 {
		return []*models.Conversation{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = conversationKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, NewConversationRepositoryError("list_by_owner", 0, err, "")
	}

	convs := make([]*models.Conversation, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var conv models.Conversation
		if err := json.Unmarshal([]byte(raw), &conv); err != nil {
			return nil, NewConversationRepositoryError("list_by_owner", 0, err, "failed to unmarshal conversation")
		}
		convs = append(convs, &conv)
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

// Delete removes a conversation and cascades to its messages, so a deleted
// conversation leaves no orphaned rows behind.
func (r *RedisConversationRepository) Delete(ctx context.Context, id int64) error {
	conv, err := r.Get(ctx, id)
	if err != nil {
		if IsConversationNotFound(err) {
			return nil
		}
		return err
	}

	msgIDs, err := r.client.LRange(ctx, conversationMessagesKey(id), 0, -1).Result()
	if err != nil {
		return NewConversationRepositoryError("delete", id, err, "")
	}

	pipe := r.client.TxPipeline()
	for _, msgID := range msgIDs {
		pipe.Del(ctx, messageKeyPrefix+msgID)
	}
	pipe.Del(ctx, conversationMessagesKey(id))
	pipe.Del(ctx, conversationKey(id))
	pipe.SRem(ctx, conversationOwnerPrefix+strconv.FormatInt(conv.OwnerID, 10), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return NewConversationRepositoryError("delete", id, err, "failed to execute transaction")
	}
	return nil
}

// AppendMessage appends a message and advances the conversation's UpdatedAt.
func (r *RedisConversationRepository) AppendMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	conv, err := r.Get(ctx, msg.ConversationID)
	if err != nil {
		return nil, err
	}

	id, err := r.client.Incr(ctx, messageCounterKey).Result()
	if err != nil {
		return nil, NewConversationRepositoryError("append_message", msg.ConversationID, err, "")
	}

	now := time.Now().UTC()
	stored := *msg
	stored.ID = id
	stored.CreatedAt = now

	msgJSON, err := json.Marshal(&stored)
	if err != nil {
		return nil, NewConversationRepositoryError("append_message", msg.ConversationID, err, "failed to marshal message")
	}

	conv.UpdatedAt = now
	convJSON, err := json.Marshal(conv)
	if err != nil {
		return nil, NewConversationRepositoryError("append_message", msg.ConversationID, err, "failed to marshal conversation")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, messageKey(id), msgJSON, 0)
	pipe.RPush(ctx, conversationMessagesKey(msg.ConversationID), id)
	pipe.Set(ctx, conversationKey(conv.ID), convJSON, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, NewConversationRepositoryError("append_message", msg.ConversationID, err, "failed to execute transaction")
	}

	return &stored, nil
}

// ListMessages returns a conversation's messages in creation order.
func (r *RedisConversationRepository) ListMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	if _, err := r.Get(ctx, conversationID); err != nil {
		return nil, err
	}

	ids, err := r.client.LRange(ctx, conversationMessagesKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, NewConversationRepositoryError("list_messages", conversationID, err, "")
	}
	if len(ids) == 0 {
		return []*models.Message{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = messageKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, NewConversationRepositoryError("list_messages", conversationID, err, "")
	}

	msgs := make([]*models.Message, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var msg models.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, NewConversationRepositoryError("list_messages", conversationID, err, "failed to unmarshal message")
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// Ping checks the Redis connection.
func (r *RedisConversationRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op; the shared client is closed by its owner.
func (r *RedisConversationRepository) Close() error {
	return nil
}
