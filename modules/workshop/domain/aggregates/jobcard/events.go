package jobcard

import "time"

const (
	EventCreated   = "jobcard.created"
	EventUpdated   = "jobcard.updated"
	EventDelivered = "jobcard.delivered"
	EventDeleted   = "jobcard.deleted"
)

type CreatedEvent struct {
	Result     JobCard
	OccurredAt time.Time
}

type UpdatedEvent struct {
	Result     JobCard
	OccurredAt time.Time
}

type DeliveredEvent struct {
	Result     JobCard
	Undone     bool
	OccurredAt time.Time
}

type DeletedEvent struct {
	Result     JobCard
	OccurredAt time.Time
}

func (CreatedEvent) Name() string   { return EventCreated }
func (UpdatedEvent) Name() string   { return EventUpdated }
func (DeliveredEvent) Name() string { return EventDelivered }
func (DeletedEvent) Name() string   { return EventDeleted }
