package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NoticePort reads the sync failures recorded for a user.
type NoticePort interface {
	ListNotices(ctx context.Context, userID string) ([]SyncNotice, error)
}

var _ NoticePort = (*NotificationModule)(nil)
var _ NoticePort = (*NotificationAdapter)(nil)

// NotificationAdapter implements NoticePort using the service container.
type NotificationAdapter struct {
	container mono.ServiceContainer
}

func NewNotificationAdapter(container mono.ServiceContainer) *NotificationAdapter {
	return &NotificationAdapter{container: container}
}

func (a *NotificationAdapter) ListNotices(ctx context.Context, userID string) ([]SyncNotice, error) {
	var resp ListNoticesResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-notices",
		json.Marshal,
		json.Unmarshal,
		&ListNoticesRequest{UserID: userID},
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-notices service call failed: %w", err)
	}
	return resp.Notices, nil
}
