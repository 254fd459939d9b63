package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/models"
)

type UserProfileService struct {
	Dynamo *DynamoService
	Table  string
}

func NewUserProfileService(dynamo *DynamoService, table string) *UserProfileService {
	if table == "" {
		table = models.UserProfilesTable
	}
	return &UserProfileService{Dynamo: dynamo, Table: table}
}

// AddUserProfile adds a new user profile to DynamoDB
func (ups *UserProfileService) AddUserProfile(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	if profile.UserHandle == "" {
		return nil, apperrors.InvalidArg("userhandle is required")
	}
	if err := ups.Dynamo.PutItem(ctx, ups.Table, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetUserProfile retrieves a user profile by handle
func (ups *UserProfileService) GetUserProfile(ctx context.Context, userHandle string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userhandle": &types.AttributeValueMemberS{Value: userHandle},
	}

	var profile models.UserProfile
	if err := ups.Dynamo.GetItem(ctx, ups.Table, key, &profile); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("profile %s not found", userHandle))
		}
		log.Error().Err(err).Str("user", userHandle).Msg("❌ Error fetching profile")
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &profile, nil
}

// IsSubscribed reports whether the user is on the paid tier.
func (ups *UserProfileService) IsSubscribed(ctx context.Context, userHandle string) (bool, error) {
	profile, err := ups.GetUserProfile(ctx, userHandle)
	if err != nil {
		return false, err
	}
	return profile.Subscribed, nil
}
