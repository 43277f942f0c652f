package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/domain"
	"github.com/buoywatch/backend/internal/repository"
)

// AlertService manages the alert lifecycle after creation.
type AlertService struct {
	repos *repository.Repos
}

// Active lists open alerts, highest priority first, optionally scoped to
// one station.
func (s *AlertService) Active(ctx context.Context, buoyID string) ([]domain.Alert, error) {
	alerts, err := s.repos.ActiveAlerts(ctx, buoyID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].PriorityScore() > alerts[j].PriorityScore()
	})
	return alerts, nil
}

func (s *AlertService) Acknowledge(ctx context.Context, alertID, userID, notes string) (*domain.Alert, error) {
	a, err := s.load(ctx, alertID)
	if err != nil {
		return nil, err
	}
	a.Acknowledge(userID, notes)
	if err := s.repos.UpdateAlertStatus(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AlertService) Resolve(ctx context.Context, alertID, notes string) (*domain.Alert, error) {
	a, err := s.load(ctx, alertID)
	if err != nil {
		return nil, err
	}
	a.Resolve(notes)
	if err := s.repos.UpdateAlertStatus(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AlertService) Cancel(ctx context.Context, alertID, reason string) (*domain.Alert, error) {
	a, err := s.load(ctx, alertID)
	if err != nil {
		return nil, err
	}
	a.Cancel(reason)
	if err := s.repos.UpdateAlertStatus(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ExpireSweep resolves ACTIVE alerts whose expiry has passed.
func (s *AlertService) ExpireSweep(ctx context.Context) (int64, error) {
	n, err := s.repos.ExpireAlerts(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("expired", n).Msg("alert expiry sweep")
	}
	return n, nil
}

func (s *AlertService) load(ctx context.Context, alertID string) (*domain.Alert, error) {
	a, err := s.repos.GetAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("alert %s not found", alertID)
	}
	return a, nil
}
