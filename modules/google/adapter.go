package google

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/schedule-sync/domain/schedule"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// EventSyncPort pushes schedule changes to the user's calendar.
type EventSyncPort interface {
	PushEvent(ctx context.Context, userID string, data schedule.Data) schedule.SyncResult
	UpdateEvent(ctx context.Context, userID, eventID string, data schedule.Data) schedule.SyncResult
	DeleteEvent(ctx context.Context, userID, eventID string) schedule.SyncResult
}

// GooglePort is the full set of Google account operations.
type GooglePort interface {
	EventSyncPort
	LinkAccount(ctx context.Context, userID, code string) (*AccessToken, error)
	AccessToken(ctx context.Context, userID string) (*AccessToken, error)
}

var _ GooglePort = (*GoogleService)(nil)
var _ GooglePort = (*GoogleAdapter)(nil)

// GoogleAdapter implements GooglePort using the service container.
type GoogleAdapter struct {
	container mono.ServiceContainer
}

// NewGoogleAdapter creates a new GoogleAdapter.
func NewGoogleAdapter(container mono.ServiceContainer) *GoogleAdapter {
	return &GoogleAdapter{
		container: container,
	}
}

// LinkAccount exchanges an authorization code for the user's credentials.
func (a *GoogleAdapter) LinkAccount(ctx context.Context, userID, code string) (*AccessToken, error) {
	req := LinkAccountRequest{UserID: userID, Code: code}
	var resp AccessToken
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"link-google-account",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("link-google-account request failed: %w", err)
	}
	return &resp, nil
}

// AccessToken returns a usable access token for the user.
func (a *GoogleAdapter) AccessToken(ctx context.Context, userID string) (*AccessToken, error) {
	req := AccessTokenRequest{UserID: userID}
	var resp AccessToken
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"google-access-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("google-access-token request failed: %w", err)
	}
	return &resp, nil
}

// PushEvent creates a remote event. A failed call is reported as an unsynced result.
func (a *GoogleAdapter) PushEvent(ctx context.Context, userID string, data schedule.Data) schedule.SyncResult {
	req := PushEventRequest{UserID: userID, Data: data}
	var resp schedule.SyncResult
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"push-event",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return schedule.NotSynced(fmt.Errorf("push-event request failed: %w", err))
	}
	return resp
}

// UpdateEvent replaces a remote event.
func (a *GoogleAdapter) UpdateEvent(ctx context.Context, userID, eventID string, data schedule.Data) schedule.SyncResult {
	req := UpdateEventRequest{UserID: userID, EventID: eventID, Data: data}
	var resp schedule.SyncResult
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-event",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return schedule.NotSynced(fmt.Errorf("update-event request failed: %w", err))
	}
	return resp
}

// DeleteEvent removes a remote event.
func (a *GoogleAdapter) DeleteEvent(ctx context.Context, userID, eventID string) schedule.SyncResult {
	req := DeleteEventRequest{UserID: userID, EventID: eventID}
	var resp schedule.SyncResult
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-event",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return schedule.NotSynced(fmt.Errorf("delete-event request failed: %w", err))
	}
	return resp
}
