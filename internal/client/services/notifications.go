package services

import (
	"context"

	"github.com/dmitrijs2005/ireporter/internal/client/client"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
)

type NotificationService interface {
	List(ctx context.Context) (*models.NotificationList, error)
	MarkRead(ctx context.Context, id models.ID) error
	MarkAllRead(ctx context.Context) error
}

type notificationService struct {
	api   client.NotificationAPI
	guard *SessionGuard
}

func NewNotificationService(api client.NotificationAPI, guard *SessionGuard) NotificationService {
	return &notificationService{api: api, guard: guard}
}

func (s *notificationService) List(ctx context.Context) (*models.NotificationList, error) {
	list, err := s.api.List(ctx)
	return list, s.guard.check(ctx, err)
}

func (s *notificationService) MarkRead(ctx context.Context, id models.ID) error {
	if id.IsZero() {
		return invalid("Notification id is required")
	}
	return s.guard.check(ctx, s.api.MarkRead(ctx, id))
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	return s.guard.check(ctx, s.api.MarkAllRead(ctx))
}
