package userinfo

import (
	"context"
	"encoding/json"
	"time"

	"household-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "userinfo:"

// Service reshapes identity-provider profiles into the client-facing shape.
// Reads are cached in Redis; updates write through and refresh the cache.
type Service struct {
	Client   ManagementClient
	Cache    *redis.Client
	CacheTTL time.Duration
}

func (s *Service) GetUserInfo(ctx context.Context, userID string) (*domain.UserInfo, error) {
	if s.Cache != nil {
		b, err := s.Cache.Get(ctx, cachePrefix+userID).Bytes()
		if err == nil {
			var info domain.UserInfo
			if json.Unmarshal(b, &info) == nil {
				return &info, nil
			}
		}
	}

	user, err := s.Client.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := buildUserInfo(user)
	s.cache(ctx, userID, info)
	return info, nil
}

func (s *Service) UpdateUserInfo(ctx context.Context, userID string, patch domain.PatchUserInfo) (*domain.UserInfo, error) {
	body := map[string]interface{}{}
	if patch.FirstName != nil {
		body["given_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		body["family_name"] = *patch.LastName
	}
	if patch.Nickname != nil {
		body["nickname"] = *patch.Nickname
	}
	if patch.Picture != nil {
		body["picture"] = *patch.Picture
	}
	metadata := map[string]interface{}{}
	if patch.AvatarImageSource != nil {
		metadata["avatarImageSource"] = string(*patch.AvatarImageSource)
	}
	if patch.GravatarEmailAddress != nil {
		metadata["gravatarEmailAddress"] = *patch.GravatarEmailAddress
	}
	if len(metadata) > 0 {
		body["user_metadata"] = metadata
	}

	user, err := s.Client.UpdateUser(ctx, userID, body)
	if err != nil {
		return nil, err
	}
	info := buildUserInfo(user)
	s.cache(ctx, userID, info)
	return info, nil
}

func (s *Service) cache(ctx context.Context, userID string, info *domain.UserInfo) {
	if s.Cache == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	b, err := json.Marshal(info)
	if err != nil {
		return
	}
	// Cache write failures are not fatal; the next read goes to the provider.
	s.Cache.Set(ctx, cachePrefix+userID, b, ttl)
}

func buildUserInfo(user *ManagementUser) *domain.UserInfo {
	info := &domain.UserInfo{
		AvatarImageSource:    domain.AvatarSourceGravatar,
		Email:                user.Email,
		FirstName:            user.GivenName,
		GravatarEmailAddress: user.Email,
		LastName:             user.FamilyName,
		Nickname:             user.Nickname,
		Picture:              user.Picture,
	}
	if v, ok := user.UserMetadata["avatarImageSource"].(string); ok && v != "" {
		info.AvatarImageSource = domain.AvatarImageSource(v)
	}
	if v, ok := user.UserMetadata["gravatarEmailAddress"].(string); ok && v != "" {
		info.GravatarEmailAddress = v
	}
	return info
}
