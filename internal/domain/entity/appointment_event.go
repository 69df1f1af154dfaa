package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a lifecycle transition published to subscribers
type EventType string

const (
	EventAppointmentBooked      EventType = "AppointmentBooked"
	EventAppointmentRescheduled EventType = "AppointmentRescheduled"
	EventAppointmentCancelled   EventType = "AppointmentCancelled"
	EventAppointmentCompleted   EventType = "AppointmentCompleted"
)

// AppointmentEvent is a persisted record of a published lifecycle event
type AppointmentEvent struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventType     EventType `gorm:"type:varchar(64);not null;index" json:"event_type"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	Payload       JSON      `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AppointmentEvent) TableName() string {
	return "appointment_events"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if bytes == nil {
		*j = nil
		return nil
	}
	result := map[string]interface{}{}
	err = json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// UUIDList is a JSONB array of ids used for back-references
type UUIDList []uuid.UUID

// Value implements driver.Valuer
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]uuid.UUID{})
	}
	return json.Marshal([]uuid.UUID(l))
}

// Scan implements sql.Scanner
func (l *UUIDList) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil || bytes == nil {
		return err
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(bytes, &ids); err != nil {
		return err
	}
	*l = UUIDList(ids)
	return nil
}

// Contains reports whether id is in the list
func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}
