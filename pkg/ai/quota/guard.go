// Package quota enforces the free-tier message ceiling per conversation.
package quota

import (
	"context"
	"errors"

	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/analytics"
	"ai-meetnotes/pkg/store"
)

var ErrQuotaExceeded = errors.New("chat message limit reached")

type LicenseChecker interface {
	HasValidLicense(ctx context.Context, userID string) (bool, error)
}

type Notifier interface {
	Notify(userID string, n store.Notification)
}

type Guard struct {
	limit    int
	licenses LicenseChecker
	tracker  analytics.Tracker
	notifier Notifier
	logger   logger.ILogger
}

// NewGuard blocks conversations holding limit or more messages. limit <= 0 disables it.
func NewGuard(limit int, licenses LicenseChecker, tracker analytics.Tracker, notifier Notifier, logger logger.ILogger) *Guard {
	return &Guard{
		limit:    limit,
		licenses: licenses,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger,
	}
}

func (g *Guard) Limit() int { return g.limit }

// Check runs before any model call. A blocked submission records one
// analytics event and sends one notification.
func (g *Guard) Check(ctx context.Context, userID string, messageCount int) error {
	if g.limit <= 0 || messageCount < g.limit {
		return nil
	}

	valid, err := g.licenses.HasValidLicense(ctx, userID)
	if err != nil {
		// Unknown entitlement counts as none
		g.logger.Warn("QUOTA", "License lookup failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
	if valid {
		return nil
	}

	g.tracker.Track(ctx, analytics.Event{Name: constant.AnalyticsQuotaExceeded, DistinctID: userID})
	g.notifier.Notify(userID, store.Notification{
		Title:   constant.QuotaNoticeTitle,
		Message: constant.QuotaNoticeMessage,
	})
	return ErrQuotaExceeded
}
