package activity

import (
	"context"
	"encoding/json"
	"time"

	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Origin is the client address and user agent of the request that caused an event.
type Origin struct {
	IPAddress string
	UserAgent string
}

// Event is the input to Recorder.Record. Empty optional fields are stored as NULL.
type Event struct {
	ActorID     string
	ActorName   string
	Type        string
	Description string
	Details     map[string]any
	Origin      Origin
}

// Recorder appends audit entries through the caller's unit of work and fans
// committed entries out to a Publisher.
type Recorder struct {
	publisher Publisher
	now       func() time.Time
}

func NewRecorder(publisher Publisher) *Recorder {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Recorder{
		publisher: publisher,
		now:       time.Now,
	}
}

// Record builds an entry from event and appends it with repo. Append failures
// are returned unchanged so they roll back the surrounding unit of work.
func (r *Recorder) Record(ctx context.Context, repo store.ActivityRepository, event Event) (*models.ActivityLog, error) {
	entry := &models.ActivityLog{
		ID:          uuid.NewString(),
		UserID:      optional(event.ActorID),
		UserName:    optional(event.ActorName),
		Type:        event.Type,
		Description: event.Description,
		IPAddress:   optional(event.Origin.IPAddress),
		UserAgent:   optional(event.Origin.UserAgent),
		Timestamp:   r.now().UTC(),
	}

	if len(event.Details) > 0 {
		raw, err := json.Marshal(event.Details)
		if err != nil {
			logrus.WithError(err).WithField("type", event.Type).Warn("Activity details are not serializable, dropping them")
		} else {
			entry.Details = optional(string(raw))
		}
	}

	if err := repo.Append(ctx, entry); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"activity_id": entry.ID,
		"type":        entry.Type,
		"actor_id":    event.ActorID,
	}).Debug("Activity recorded")

	return entry, nil
}

// Publish forwards committed entries to the publisher. Failures are logged only.
func (r *Recorder) Publish(entries ...*models.ActivityLog) {
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if err := r.publisher.Publish(entry); err != nil {
			logrus.WithError(err).WithField("activity_id", entry.ID).Warn("Failed to publish activity")
		}
	}
}

// PublisherName reports which publisher is wired, for health output.
func (r *Recorder) PublisherName() string {
	return r.publisher.Name()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
