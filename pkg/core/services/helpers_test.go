package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/db"
)

type fakeCatalog struct {
	taskTypes map[string]*model.TaskType
}

func (c *fakeCatalog) GetTaskType(_ context.Context, id string) (*model.TaskType, error) {
	taskType, ok := c.taskTypes[id]
	if !ok {
		return nil, fmt.Errorf("unknown task type %s", id)
	}
	return taskType, nil
}

type fakeDirectory struct {
	volunteers map[string]*model.Volunteer
}

func (d *fakeDirectory) GetVolunteer(_ context.Context, id string) (*model.Volunteer, error) {
	volunteer, ok := d.volunteers[id]
	if !ok {
		return nil, fmt.Errorf("unknown volunteer %s", id)
	}
	return volunteer, nil
}

type fixture struct {
	store     *db.MemoryStore
	catalog   *fakeCatalog
	directory *fakeDirectory
	logger    *zap.Logger
}

func newFixture() *fixture {
	return &fixture{
		store: db.NewMemoryStore(),
		catalog: &fakeCatalog{taskTypes: map[string]*model.TaskType{
			"bar": {ID: "bar", Name: model.LocalizedText{FI: "Baari", EN: "Bar"}},
			"door": {
				ID:         "door",
				Name:       model.LocalizedText{FI: "Ovi", EN: "Door"},
				ActiveOnly: true,
			},
			"info": {ID: "info", Name: model.LocalizedText{FI: "Infotiski", EN: "Info desk"}},
		}},
		directory: &fakeDirectory{volunteers: map[string]*model.Volunteer{
			"vol-1":   {ID: "vol-1", Name: "Maija Meikäläinen", Active: true},
			"vol-2":   {ID: "vol-2", Name: "Matti Meikäläinen", Active: true},
			"passive": {ID: "passive", Name: "Erkki Esimerkki", Active: false},
		}},
		logger: zap.NewNop(),
	}
}

func (f *fixture) addProgram(t *testing.T, params ConfigureParams) *model.Program {
	t.Helper()
	if params.EventID == "" {
		params.EventID = "event-1"
	}
	program, err := ConfigureProgram(context.Background(), f.store, f.logger, params)
	require.NoError(t, err)
	return program
}

func (f *fixture) addShift(t *testing.T, params AddShiftParams) *model.Shift {
	t.Helper()
	shift, err := AddShift(context.Background(), f.store, f.catalog, f.logger, params)
	require.NoError(t, err)
	return shift
}

func (f *fixture) book(t *testing.T, params BookParams) *model.Booking {
	t.Helper()
	booking, err := Book(context.Background(), f.store, f.catalog, f.directory, f.logger, params)
	require.NoError(t, err)
	return booking
}

// eveningShift is 18:00-22:00 with hourly slots
func eveningShift(programID string) AddShiftParams {
	return AddShiftParams{
		ProgramID:  programID,
		TaskTypeID: "bar",
		Start:      time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 9, 4, 22, 0, 0, 0, time.UTC),
		Interval:   time.Hour,
	}
}
