package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/config"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/store"
)

// ErrRecordNotFound signals a lookup miss. It is an expected outcome, not a
// failure: the store is never touched when it is returned.
var ErrRecordNotFound = errors.New("record not found")

// RecordOptions configures one record type.
type RecordOptions struct {
	// Kind names the record type in logs and change events ("exams").
	Kind          string
	DefaultStatus model.Status
	Records       *store.Collection
	Schedules     *store.Collection
	Publisher     Publisher
}

// RecordService is the mock CRUD resource for one record type.
type RecordService struct {
	kind          string
	defaultStatus model.Status
	records       *store.Collection
	schedules     *store.Collection
	pub           Publisher
	log           zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewRecordService creates a RecordService.
func NewRecordService(opts RecordOptions, log zerolog.Logger) *RecordService {
	pub := opts.Publisher
	if pub == nil {
		pub = nopPublisher{}
	}
	status := opts.DefaultStatus
	if status == "" {
		status = model.StatusUpcoming
	}
	return &RecordService{
		kind:          opts.Kind,
		defaultStatus: status,
		records:       opts.Records,
		schedules:     opts.Schedules,
		pub:           pub,
		log:           log.With().Str("component", "record_service").Str("kind", opts.Kind).Logger(),
		now:           time.Now,
		newID:         NewRecordID,
	}
}

// NewExamService wires the exam record type and its schedule list.
func NewExamService(storage store.Storage, keys *config.StoreKeyStruct, quota int, pub Publisher, log zerolog.Logger) *RecordService {
	return NewRecordService(RecordOptions{
		Kind:          config.CollectionExams,
		DefaultStatus: model.StatusUpcoming,
		Records:       store.NewCollection(storage, keys.Exams(), quota, log),
		Schedules:     store.NewCollection(storage, keys.ExamSchedules(), quota, log),
		Publisher:     pub,
	}, log)
}

// NewWebinarService wires the webinar record type and its schedule list.
func NewWebinarService(storage store.Storage, keys *config.StoreKeyStruct, quota int, pub Publisher, log zerolog.Logger) *RecordService {
	return NewRecordService(RecordOptions{
		Kind:          config.CollectionWebinars,
		DefaultStatus: model.StatusUpcoming,
		Records:       store.NewCollection(storage, keys.Webinars(), quota, log),
		Schedules:     store.NewCollection(storage, keys.WebinarSchedules(), quota, log),
		Publisher:     pub,
	}, log)
}

// NewRecordID returns a UUIDv7, which sorts by creation time.
func NewRecordID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Kind returns the record type name.
func (s *RecordService) Kind() string {
	return s.kind
}

// List returns all records in stored order (newest first).
func (s *RecordService) List(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.records.Load(ctx), nil
}

// GetByID returns the record with the given id.
func (s *RecordService) GetByID(ctx context.Context, id string) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := store.Find(s.records.Load(ctx), id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &r, nil
}

// Create stores a new record built from fields plus a fresh id, creation
// time and status. A "status" in fields overrides the default status and
// must be a non-empty string (model.ErrInvalidStatus otherwise).
func (s *RecordService) Create(ctx context.Context, fields model.Payload) (*model.Record, error) {
	if err := model.CheckStatus(fields); err != nil {
		return nil, err
	}
	rec := s.newRecord(fields, s.defaultStatus)

	state, err := s.records.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		return store.Prepend(cur, rec), true, nil
	})
	if err != nil {
		return nil, err
	}

	created, _ := store.Find(state, rec.ID)
	s.log.Info().Str("id", created.ID).Msg("Record created")
	s.publish(s.records.Key(), model.ChangeCreated, created.ID)
	return &created, nil
}

// Update shallow-merges patch over the record with the given id. A "status"
// in patch must be a non-empty string; nothing is written otherwise.
func (s *RecordService) Update(ctx context.Context, id string, patch model.Payload) (*model.Record, error) {
	if err := model.CheckStatus(patch); err != nil {
		return nil, err
	}
	state, err := s.records.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		next, _, found := store.Merge(cur, id, patch)
		if !found {
			return nil, false, ErrRecordNotFound
		}
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	updated, _ := store.Find(state, id)
	s.log.Info().Str("id", id).Msg("Record updated")
	s.publish(s.records.Key(), model.ChangeUpdated, id)
	return &updated, nil
}

// Delete removes the record with the given id and returns the remaining
// records. Deleting an unknown id is a no-op.
func (s *RecordService) Delete(ctx context.Context, id string) ([]model.Record, error) {
	removed := false
	state, err := s.records.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		next, ok := store.Remove(cur, id)
		removed = ok
		return next, ok, nil
	})
	if err != nil {
		return nil, err
	}

	if removed {
		s.log.Info().Str("id", id).Msg("Record deleted")
		s.publish(s.records.Key(), model.ChangeDeleted, id)
	}
	return state, nil
}

// Schedule appends an entry to the schedule list. References inside payload
// (e.g. an exam id) are not checked against the record list.
func (s *RecordService) Schedule(ctx context.Context, payload model.Payload) (*model.Record, error) {
	if err := model.CheckStatus(payload); err != nil {
		return nil, err
	}
	entry := s.newRecord(payload, model.StatusScheduled)

	state, err := s.schedules.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		return store.Append(cur, entry), true, nil
	})
	if err != nil {
		return nil, err
	}

	scheduled, _ := store.Find(state, entry.ID)
	s.log.Info().Str("id", scheduled.ID).Msg("Schedule entry added")
	s.publish(s.schedules.Key(), model.ChangeScheduled, scheduled.ID)
	return &scheduled, nil
}

// ListSchedules returns all schedule entries in insertion order.
func (s *RecordService) ListSchedules(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.schedules.Load(ctx), nil
}

func (s *RecordService) newRecord(fields model.Payload, status model.Status) model.Record {
	if v, ok := fields[model.FieldStatus].(string); ok && v != "" {
		status = model.Status(v)
	}

	payload := make(model.Payload, len(fields))
	for k, v := range fields {
		if model.IsReservedField(k) {
			continue
		}
		payload[k] = v
	}

	return model.Record{
		ID:          s.newID(),
		DateCreated: s.now().UTC(),
		Status:      status,
		Fields:      payload,
	}
}

func (s *RecordService) publish(key string, action model.ChangeAction, id string) {
	s.pub.Publish(model.ChangeEvent{
		Collection: key,
		Action:     action,
		RecordID:   id,
		At:         s.now().UTC(),
	})
}
