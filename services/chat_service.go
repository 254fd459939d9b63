package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/chat"
	"vibin/models"
)

// createdAtLayout is fixed width so the sort key orders lexically by time.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// recentWindow is how many of the newest messages Send scans for a repeated
// clientId.
const recentWindow = 20

var _ chat.MessageStore = (*ChatService)(nil)

// messageRecord is the Messages table row.
// PK conversationId (PairKey), SK sortKey (createdAt#messageId).
type messageRecord struct {
	ConversationID string `dynamodbav:"conversationId"`
	SortKey        string `dynamodbav:"sortKey"`
	MessageID      string `dynamodbav:"messageId"`
	ClientID       string `dynamodbav:"clientId,omitempty"`
	SenderID       string `dynamodbav:"senderId"`
	ReceiverID     string `dynamodbav:"receiverId"`
	Body           string `dynamodbav:"body"`
	CreatedAt      string `dynamodbav:"createdAt"`
}

func newMessageRecord(msg models.Message) messageRecord {
	createdAt := msg.CreatedAt.UTC().Format(createdAtLayout)
	return messageRecord{
		ConversationID: models.PairKey(msg.SenderID, msg.ReceiverID),
		SortKey:        createdAt + "#" + msg.MessageID,
		MessageID:      msg.MessageID,
		ClientID:       msg.ClientID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Body:           msg.Body,
		CreatedAt:      createdAt,
	}
}

func (r messageRecord) message() models.Message {
	createdAt, err := time.Parse(createdAtLayout, r.CreatedAt)
	if err != nil {
		// Rows written by older clients carry RFC3339
		createdAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	}
	return models.Message{
		MessageID:  r.MessageID,
		ClientID:   r.ClientID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Body:       r.Body,
		CreatedAt:  createdAt,
	}
}

// ChatService stores direct messages in DynamoDB. It is the server-side
// chat.MessageStore.
type ChatService struct {
	Dynamo *DynamoService
	Table  string
	now    func() time.Time
}

func NewChatService(dynamo *DynamoService, table string) *ChatService {
	if table == "" {
		table = models.MessagesTable
	}
	return &ChatService{Dynamo: dynamo, Table: table, now: time.Now}
}

// History returns the conversation between a and b oldest first. A non-zero
// since keeps only messages created after it.
func (s *ChatService) History(ctx context.Context, a, b string, since time.Time) ([]models.Message, error) {
	if a == "" || b == "" {
		return nil, apperrors.ErrInvalidParticipants
	}
	conversationID := models.PairKey(a, b)
	log.Debug().Str("conversation", conversationID).Time("since", since).Msg("🔍 Fetching messages")

	keyCondition := "conversationId = :cid"
	values := map[string]types.AttributeValue{
		":cid": &types.AttributeValueMemberS{Value: conversationID},
	}
	if !since.IsZero() {
		// '~' sorts after every messageId character
		keyCondition += " AND sortKey > :since"
		values[":since"] = &types.AttributeValueMemberS{Value: since.UTC().Format(createdAtLayout) + "#~"}
	}

	items, err := s.Dynamo.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.Table),
		KeyConditionExpression:    aws.String(keyCondition),
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(true),
	})
	if err != nil {
		log.Error().Err(err).Str("conversation", conversationID).Msg("❌ Error querying messages")
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	messages, err := unmarshalMessages(items)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("count", len(messages)).Str("conversation", conversationID).Msg("✅ Found messages")
	return messages, nil
}

// Send stores msg with a server id and timestamp. A clientId already present
// among the newest messages returns the stored copy instead of a duplicate.
func (s *ChatService) Send(ctx context.Context, msg models.Message) (models.Message, error) {
	msg.Body = strings.TrimSpace(msg.Body)
	if msg.SenderID == "" || msg.ReceiverID == "" || msg.SenderID == msg.ReceiverID {
		return models.Message{}, apperrors.ErrInvalidParticipants
	}
	if !msg.Validate() {
		return models.Message{}, apperrors.InvalidArg("message body is required")
	}

	if msg.ClientID != "" {
		existing, err := s.findByClientID(ctx, msg)
		if err != nil {
			return models.Message{}, err
		}
		if existing != nil {
			log.Info().Str("clientId", msg.ClientID).Msg("⚠️ Duplicate send, returning stored message")
			return *existing, nil
		}
	}

	msg.MessageID = uuid.New().String()
	msg.CreatedAt = s.now().UTC()

	log.Debug().Str("sender", msg.SenderID).Str("receiver", msg.ReceiverID).Msg("📩 Storing message")
	if err := s.Dynamo.PutItem(ctx, s.Table, newMessageRecord(msg)); err != nil {
		log.Error().Err(err).Msg("❌ Failed to store message")
		return models.Message{}, fmt.Errorf("failed to store message: %w", err)
	}
	log.Info().Str("messageId", msg.MessageID).Msg("✅ Message stored successfully")
	return msg, nil
}

// LastMessage returns the newest message between a and b, or nil. It reads a
// single item instead of the whole conversation.
func (s *ChatService) LastMessage(ctx context.Context, a, b string) (*models.Message, error) {
	messages, err := s.latest(ctx, a, b, 1)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

func (s *ChatService) findByClientID(ctx context.Context, msg models.Message) (*models.Message, error) {
	recent, err := s.latest(ctx, msg.SenderID, msg.ReceiverID, recentWindow)
	if err != nil {
		return nil, err
	}
	for i := range recent {
		if recent[i].ClientID == msg.ClientID && recent[i].SenderID == msg.SenderID {
			return &recent[i], nil
		}
	}
	return nil, nil
}

// latest returns up to limit messages, newest first.
func (s *ChatService) latest(ctx context.Context, a, b string, limit int32) ([]models.Message, error) {
	items, err := s.Dynamo.QueryItemsWithOptions(ctx, s.Table,
		"conversationId = :cid",
		map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: models.PairKey(a, b)},
		},
		nil, limit, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest messages: %w", err)
	}
	return unmarshalMessages(items)
}

func unmarshalMessages(items []map[string]types.AttributeValue) ([]models.Message, error) {
	var records []messageRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		log.Error().Err(err).Msg("❌ Error unmarshalling messages")
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	messages := make([]models.Message, 0, len(records))
	for _, r := range records {
		messages = append(messages, r.message())
	}
	return messages, nil
}
