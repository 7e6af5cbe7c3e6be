package entity

import (
	"time"

	"github.com/google/uuid"
)

type CalendarEvent struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Note      string
	StartDate time.Time
	EndDate   time.Time
}
