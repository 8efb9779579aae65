package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
)

type NotificationAPI interface {
	List(ctx context.Context) (*models.NotificationList, error)
	MarkRead(ctx context.Context, id models.ID) error
	MarkAllRead(ctx context.Context) error
}

type Notifications struct {
	c *HTTPClient
}

var _ NotificationAPI = (*Notifications)(nil)

func (n *Notifications) List(ctx context.Context) (*models.NotificationList, error) {
	var list models.NotificationList
	if err := n.c.do(ctx, http.MethodGet, "/notifications", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (n *Notifications) MarkRead(ctx context.Context, id models.ID) error {
	return n.c.do(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id.String())+"/read", nil, nil)
}

func (n *Notifications) MarkAllRead(ctx context.Context) error {
	return n.c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}
