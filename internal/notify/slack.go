// Package notify posts selected audit records to a Slack channel.
package notify

import (
	"context"
	"fmt"
	"time"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

const postTimeout = 5 * time.Second

// SlackAPI abstracts the subset of the Slack client used by SlackNotifier.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackNotifier is an audit sink that posts records whose action is in its
// watch list. Other records are ignored.
type SlackNotifier struct {
	api     SlackAPI
	channel string
	actions map[domain.AuditAction]struct{}
}

// Compile-time interface check.
var _ audit.Sink = (*SlackNotifier)(nil) //nolint:gochecknoglobals // compile-time check

// NewSlackNotifier creates a notifier posting to channel for the given
// actions.
func NewSlackNotifier(api SlackAPI, channel string, actions []domain.AuditAction) *SlackNotifier {
	set := make(map[domain.AuditAction]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return &SlackNotifier{api: api, channel: channel, actions: set}
}

// NewSlackClient builds the real Slack API client for token.
func NewSlackClient(token string) SlackAPI {
	return slacklib.New(token)
}

func (n *SlackNotifier) Name() string { return "slack" }

// Watches reports whether records with action are posted.
func (n *SlackNotifier) Watches(action domain.AuditAction) bool {
	_, ok := n.actions[action]
	return ok
}

func (n *SlackNotifier) Publish(ctx context.Context, rec *domain.AuditRecord) error {
	if !n.Watches(rec.Action) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slacklib.MsgOptionText(summary(rec), false),
		slacklib.MsgOptionBlocks(BuildAuditBlocks(rec)...),
	)
	if err != nil {
		return fmt.Errorf("notify.SlackNotifier.Publish: %w", err)
	}
	return nil
}

// summary is the plain-text fallback shown in notifications.
func summary(rec *domain.AuditRecord) string {
	if rec.Description != nil && *rec.Description != "" {
		return *rec.Description
	}
	return string(rec.Action)
}
