package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/timesheet-insights/internal/application/port"
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// DismissalService is the suppression ledger between evaluation and display
type DismissalService interface {
	IsDismissed(ctx context.Context, alertKey string) bool
	Dismiss(ctx context.Context, alertKey string) error
	DismissAll(ctx context.Context, alertKeys []string) error
	Filter(ctx context.Context, notifications []entity.Notification) []entity.Notification
	List(ctx context.Context) ([]entity.DismissalRecord, error)
}

type dismissalServiceImpl struct {
	repo   port.DismissalRepository
	logger Logger
	now    func() time.Time
}

// NewDismissalService creates a new DismissalService
func NewDismissalService(repo port.DismissalRepository, logger Logger) DismissalService {
	return &dismissalServiceImpl{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// IsDismissed reports whether the key was dismissed. A read failure counts as
// not dismissed so that an alert is shown rather than lost.
func (s *dismissalServiceImpl) IsDismissed(ctx context.Context, alertKey string) bool {
	dismissed, err := s.repo.Get(ctx, []string{alertKey})
	if err != nil {
		s.logger.Error("Failed to read dismissal", "error", err, "alert_key", alertKey)
		return false
	}
	return dismissed[alertKey]
}

// Dismiss records the key as dismissed
func (s *dismissalServiceImpl) Dismiss(ctx context.Context, alertKey string) error {
	if _, err := entity.ParseAlertKey(alertKey); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAlertKey, err)
	}

	record := entity.DismissalRecord{AlertKey: alertKey, DismissedAt: s.now()}
	if err := s.repo.Put(ctx, record); err != nil {
		s.logger.Error("Failed to store dismissal", "error", err, "alert_key", alertKey)
		return fmt.Errorf("store dismissal: %w", err)
	}

	s.logger.Info("Alert dismissed", "alert_key", alertKey)
	return nil
}

// DismissAll records every key in one write; nothing is stored if any key is malformed
func (s *dismissalServiceImpl) DismissAll(ctx context.Context, alertKeys []string) error {
	if len(alertKeys) == 0 {
		return nil
	}

	now := s.now()
	records := make([]entity.DismissalRecord, 0, len(alertKeys))
	for _, key := range alertKeys {
		if _, err := entity.ParseAlertKey(key); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAlertKey, err)
		}
		records = append(records, entity.DismissalRecord{AlertKey: key, DismissedAt: now})
	}

	if err := s.repo.PutMany(ctx, records); err != nil {
		s.logger.Error("Failed to store dismissals", "error", err, "count", len(records))
		return fmt.Errorf("store dismissals: %w", err)
	}

	s.logger.Info("Alerts dismissed", "count", len(records))
	return nil
}

// Filter drops notifications whose alert key has been dismissed, keeping order.
// All keys are looked up in a single read.
func (s *dismissalServiceImpl) Filter(ctx context.Context, notifications []entity.Notification) []entity.Notification {
	if len(notifications) == 0 {
		return notifications
	}

	keys := make([]string, 0, len(notifications))
	seen := make(map[string]bool, len(notifications))
	for _, n := range notifications {
		key := n.AlertKey()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}

	dismissed, err := s.repo.Get(ctx, keys)
	if err != nil {
		s.logger.Error("Failed to read dismissals, showing all notifications", "error", err, "count", len(keys))
		return notifications
	}

	visible := make([]entity.Notification, 0, len(notifications))
	for _, n := range notifications {
		if dismissed[n.AlertKey()] {
			continue
		}
		visible = append(visible, n)
	}
	return visible
}

// List returns all stored dismissals
func (s *dismissalServiceImpl) List(ctx context.Context) ([]entity.DismissalRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dismissals: %w", err)
	}
	return records, nil
}
