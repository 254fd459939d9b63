package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vibin/models"
)

// MatchService struct
type MatchService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
	Table    string
}

func NewMatchService(dynamo *DynamoService, profiles *UserProfileService, table string) *MatchService {
	if table == "" {
		table = models.MatchesTable
	}
	return &MatchService{Dynamo: dynamo, Profiles: profiles, Table: table}
}

// GetMatchesByUserHandle fetches matches where userHandle is either user1Handle or user2Handle
func (s *MatchService) GetMatchesByUserHandle(ctx context.Context, userHandle string) ([]models.Match, error) {
	matches := []models.Match{}
	expressionValues := map[string]types.AttributeValue{
		":userHandle": &types.AttributeValueMemberS{Value: userHandle},
	}

	for _, q := range []struct{ index, condition string }{
		{models.User1HandleIndex, "user1Handle = :userHandle"},
		{models.User2HandleIndex, "user2Handle = :userHandle"},
	} {
		log.Debug().Str("index", q.index).Str("user", userHandle).Msg("🔍 Querying matches")
		items, err := s.Dynamo.QueryItemsWithIndex(ctx, s.Table, q.index, q.condition, expressionValues)
		if err != nil {
			log.Error().Err(err).Str("index", q.index).Msg("❌ Error querying matches")
			return nil, fmt.Errorf("failed to fetch matches: %w", err)
		}
		for _, item := range items {
			var match models.Match
			if err := attributevalue.UnmarshalMap(item, &match); err != nil {
				log.Warn().Err(err).Str("index", q.index).Msg("⚠️ Skipping unreadable match")
				continue
			}
			matches = append(matches, match)
		}
	}

	log.Debug().Int("count", len(matches)).Str("user", userHandle).Msg("✅ Found matches")
	return matches, nil
}

// GetMatchesWithProfiles attaches the counterpart's profile to every match.
// A missing profile leaves the display fields empty.
func (s *MatchService) GetMatchesWithProfiles(ctx context.Context, userHandle string) ([]models.MatchWithProfile, error) {
	matches, err := s.GetMatchesByUserHandle(ctx, userHandle)
	if err != nil {
		return nil, err
	}

	result := make([]models.MatchWithProfile, 0, len(matches))
	for _, match := range matches {
		other := match.OtherUser(userHandle)
		enriched := models.MatchWithProfile{Match: match, UserHandle: other}
		if s.Profiles != nil {
			profile, err := s.Profiles.GetUserProfile(ctx, other)
			if err != nil {
				log.Warn().Err(err).Str("peer", other).Msg("⚠️ Match profile unavailable")
			} else {
				enriched.Name = profile.Name
				enriched.Age = profile.Age
				enriched.Photos = profile.Photos
				enriched.Bio = profile.Bio
				enriched.Prompts = profile.Prompts
			}
		}
		result = append(result, enriched)
	}
	return result, nil
}

// CreateMatch stores an active match between two users.
func (s *MatchService) CreateMatch(ctx context.Context, matchID, user1, user2 string) (*models.Match, error) {
	if matchID == "" {
		matchID = uuid.New().String()
	}
	match := models.Match{
		MatchID:     matchID,
		User1Handle: user1,
		User2Handle: user2,
		Status:      models.StatusActive,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, s.Table, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	log.Info().Str("matchId", matchID).Str("user1", user1).Str("user2", user2).Msg("💘 Match created")
	return &match, nil
}
