package config

import (
	"context"
	"fmt"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// Catalog is a task type catalog backed by configuration entries
type Catalog struct {
	taskTypes map[string]*model.TaskType
}

// NewCatalog indexes the configured task types by id
func NewCatalog(cfg *Config) *Catalog {
	taskTypes := make(map[string]*model.TaskType, len(cfg.TaskTypes))
	for _, entry := range cfg.TaskTypes {
		taskTypes[entry.ID] = &model.TaskType{
			ID:          entry.ID,
			Name:        model.LocalizedText{FI: entry.NameFI, EN: entry.NameEN},
			Description: model.LocalizedText{FI: entry.DescriptionFI, EN: entry.DescriptionEN},
			ActiveOnly:  entry.ActiveOnly,
		}
	}
	return &Catalog{taskTypes: taskTypes}
}

func (c *Catalog) GetTaskType(_ context.Context, id string) (*model.TaskType, error) {
	taskType, ok := c.taskTypes[id]
	if !ok {
		return nil, fmt.Errorf("task type %s not in catalog", id)
	}
	return taskType, nil
}

// Directory is a member directory backed by configuration entries.
// Deployments with a real member registry swap in their own
// implementation; this one serves small events and local development.
type Directory struct {
	volunteers map[string]*model.Volunteer
}

// NewDirectory indexes the configured volunteers by id
func NewDirectory(cfg *Config) *Directory {
	volunteers := make(map[string]*model.Volunteer, len(cfg.Volunteers))
	for _, entry := range cfg.Volunteers {
		locale := model.Locale(entry.Locale)
		if !locale.IsValid() {
			locale = model.LocaleFI
		}
		volunteers[entry.ID] = &model.Volunteer{
			ID:     entry.ID,
			Name:   entry.Name,
			Email:  entry.Email,
			Locale: locale,
			Active: entry.Active,
		}
	}
	return &Directory{volunteers: volunteers}
}

func (d *Directory) GetVolunteer(_ context.Context, id string) (*model.Volunteer, error) {
	volunteer, ok := d.volunteers[id]
	if !ok {
		return nil, fmt.Errorf("volunteer %s not in directory", id)
	}
	return volunteer, nil
}
