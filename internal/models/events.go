package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий жизненного цикла пациента.
const (
	EventPatientCreated     = "patient.created"
	EventPatientUpdated     = "patient.updated"
	EventPatientDeactivated = "patient.deactivated"
)

// PatientEvent публикуется в брокер после успешной записи в хранилище.
type PatientEvent struct {
	Type           string    `json:"type"`
	PatientID      uuid.UUID `json:"patient_id"`
	DocumentNumber string    `json:"document_number"`
	ActorID        string    `json:"actor_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
