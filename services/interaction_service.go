package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/models"
)

// InteractionService handles likes and roses. A like answered by a pending
// like from the other side creates a match.
type InteractionService struct {
	Dynamo   *DynamoService
	Matches  *MatchService
	Profiles *UserProfileService
	Table    string
}

func NewInteractionService(dynamo *DynamoService, matches *MatchService, profiles *UserProfileService, table string) *InteractionService {
	if table == "" {
		table = models.InteractionsTable
	}
	return &InteractionService{Dynamo: dynamo, Matches: matches, Profiles: profiles, Table: table}
}

// GetInteraction retrieves an interaction between two users, nil when none
func (s *InteractionService) GetInteraction(ctx context.Context, sender, receiver string) (*models.Interaction, error) {
	pk, sk := models.InteractionKey(sender, receiver)
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}

	var interaction models.Interaction
	if err := s.Dynamo.GetItem(ctx, s.Table, key, &interaction); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		log.Error().Err(err).Str("sender", sender).Str("receiver", receiver).Msg("❌ DynamoDB error while fetching interaction")
		return nil, err
	}
	return &interaction, nil
}

// Like records sender's like. Returns the match id when the like is mutual.
func (s *InteractionService) Like(ctx context.Context, sender, receiver string) (string, error) {
	if err := checkPair(sender, receiver); err != nil {
		return "", err
	}
	log.Debug().Str("sender", sender).Str("receiver", receiver).Msg("🔄 Processing like")

	mutual, err := s.GetInteraction(ctx, receiver, sender)
	if err != nil {
		return "", err
	}
	if mutual != nil && mutual.Status == models.StatusMatch {
		log.Debug().Str("sender", sender).Str("receiver", receiver).Msg("🔄 Already matched, nothing to record")
		return aws.ToString(mutual.MatchID), nil
	}
	if mutual == nil || mutual.Status != models.StatusPending {
		return "", s.put(ctx, sender, receiver, models.InteractionTypeLike, models.StatusPending, nil, nil)
	}

	matchID := uuid.New().String()
	if _, err := s.Matches.CreateMatch(ctx, matchID, receiver, sender); err != nil {
		return "", err
	}
	if err := s.put(ctx, sender, receiver, models.InteractionTypeLike, models.StatusMatch, &matchID, nil); err != nil {
		return "", err
	}
	if err := s.UpdateInteractionStatus(ctx, receiver, sender, models.StatusMatch, &matchID); err != nil {
		return "", err
	}
	return matchID, nil
}

// Rose sends a rose with an optional note. Only subscribers may send roses;
// everyone else gets an Unauthorized error so the app can show the upsell.
func (s *InteractionService) Rose(ctx context.Context, sender, receiver string, message *string) error {
	if err := checkPair(sender, receiver); err != nil {
		return err
	}
	subscribed, err := s.Profiles.IsSubscribed(ctx, sender)
	if err != nil {
		return err
	}
	if !subscribed {
		log.Info().Str("sender", sender).Msg("🔒 Rose blocked, sender is not subscribed")
		return apperrors.Unauthorized("roses require a subscription")
	}
	return s.put(ctx, sender, receiver, models.InteractionTypeRose, models.StatusPending, nil, message)
}

func (s *InteractionService) put(ctx context.Context, sender, receiver, interactionType, status string, matchID, message *string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	pk, sk := models.InteractionKey(sender, receiver)
	interaction := models.Interaction{
		PK:              pk,
		SK:              sk,
		SenderHandle:    sender,
		ReceiverHandle:  receiver,
		InteractionType: interactionType,
		Status:          status,
		MatchID:         matchID,
		Message:         message,
		CreatedAt:       now,
		LastUpdated:     now,
	}
	if err := s.Dynamo.PutItem(ctx, s.Table, interaction); err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	return nil
}

// UpdateInteractionStatus updates the status of an existing interaction
func (s *InteractionService) UpdateInteractionStatus(ctx context.Context, sender, receiver, newStatus string, matchID *string) error {
	updateExpression := "SET #status = :status, #lastUpdated = :lastUpdated"
	expressionValues := map[string]types.AttributeValue{
		":status":      &types.AttributeValueMemberS{Value: newStatus},
		":lastUpdated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	expressionNames := map[string]string{
		"#status":      "status",
		"#lastUpdated": "lastUpdated",
	}
	if matchID != nil {
		updateExpression += ", #matchId = :matchId"
		expressionValues[":matchId"] = &types.AttributeValueMemberS{Value: *matchID}
		expressionNames["#matchId"] = "matchId"
	}

	pk, sk := models.InteractionKey(sender, receiver)
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
	return s.Dynamo.UpdateItem(ctx, s.Table, updateExpression, key, expressionValues, expressionNames)
}

func checkPair(sender, receiver string) error {
	if sender == "" || receiver == "" {
		return apperrors.ErrInvalidParticipants
	}
	if sender == receiver {
		return apperrors.InvalidArg("cannot interact with yourself")
	}
	return nil
}
