package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/haulmatic/fleetguard/internal/user/domain"
	"github.com/haulmatic/fleetguard/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	log   *zap.Logger
	store repository.Repository[userdomain.User]
}

func NewService(p Params) userdomain.Service {
	return &Service{
		log:   p.Log.Named("user.service"),
		store: repository.ProvideStore[userdomain.User](p.DB),
	}
}

func (s *Service) Get(ctx context.Context, id string) (userdomain.User, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || userID == 0 {
		return userdomain.User{}, userdomain.ErrInvalidUserID
	}
	user, err := s.store.FindOne(ctx, &userdomain.User{ID: userID})
	if err != nil {
		return userdomain.User{}, err
	}
	if user == nil {
		return userdomain.User{}, userdomain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Service) ReminderRecipients(ctx context.Context, userID string) ([]userdomain.User, error) {
	query := userdomain.User{Active: true, NotifyEmail: true}
	if strings.TrimSpace(userID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(userID))
		if err != nil || id == 0 {
			return nil, userdomain.ErrInvalidUserID
		}
		query.ID = id
	}

	users, err := s.store.Find(ctx, &query)
	if err != nil {
		return nil, err
	}
	out := make([]userdomain.User, 0, len(users))
	for _, u := range users {
		out = append(out, *u)
	}
	return out, nil
}
