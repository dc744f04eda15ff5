// Package calendar mirrors meetings into Google Calendar. Sync is
// optional: a disabled Sync is safe to call and does nothing.
package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/jonesrussell/docbridge/internal/config"
	"github.com/jonesrussell/docbridge/internal/logger"
	"github.com/jonesrussell/docbridge/internal/models"
)

const defaultEventLength = time.Hour

type Sync struct {
	service    *calendar.Service
	calendarID string
	log        logger.Logger
}

// NewSync builds the calendar client from a service-account credentials
// file. Returns a disabled Sync when the feature is off.
func NewSync(ctx context.Context, cfg config.CalendarConfig, log logger.Logger) (*Sync, error) {
	if !cfg.Enabled {
		log.Info("calendar sync disabled")
		return &Sync{log: log}, nil
	}

	service, err := calendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(calendar.CalendarEventsScope))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	log.Info("calendar sync enabled", logger.String("calendar_id", cfg.CalendarID))
	return &Sync{service: service, calendarID: cfg.CalendarID, log: log}, nil
}

func (s *Sync) Enabled() bool { return s.service != nil }

// CreateEvent mirrors a meeting as a one-hour calendar event and
// returns the event id.
func (s *Sync) CreateEvent(ctx context.Context, m *models.Meeting) (string, error) {
	if s.service == nil {
		return "", nil
	}

	event := &calendar.Event{
		Summary:     m.Title,
		Description: fmt.Sprintf("Meeting type: %s", m.MeetingType),
		Start:       &calendar.EventDateTime{DateTime: m.ScheduledAt.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: m.ScheduledAt.Add(defaultEventLength).Format(time.RFC3339)},
	}

	created, err := s.service.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create calendar event: %w", err)
	}

	s.log.Info("calendar event created",
		logger.String("meeting_id", m.ID),
		logger.String("event_id", created.Id))
	return created.Id, nil
}

// DeleteEvent removes the mirrored event. Missing events are not an
// error: the meeting is gone either way.
func (s *Sync) DeleteEvent(ctx context.Context, eventID string) error {
	if s.service == nil || eventID == "" {
		return nil
	}
	if err := s.service.Events.Delete(s.calendarID, eventID).Context(ctx).Do(); err != nil {
		s.log.Warn("delete calendar event", logger.String("event_id", eventID), logger.Error(err))
	}
	return nil
}
