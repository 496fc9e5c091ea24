package services

import (
	"context"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// VolunteerDirectory is the external member directory. The booking core
// only ever reads from it by id.
type VolunteerDirectory interface {
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
}

// TaskTypeCatalog is the externally owned catalog of volunteer task
// types. Entries are immutable from this system's point of view.
type TaskTypeCatalog interface {
	GetTaskType(ctx context.Context, id string) (*model.TaskType, error)
}
