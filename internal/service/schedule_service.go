package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/isagps/ProfAgendaBack/internal/models"
	appErrors "github.com/isagps/ProfAgendaBack/pkg/errors"
)

type scheduleRepository interface {
	crudRepository[models.Schedule]
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleDetail, error)
	ListByClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error)
	ListByTeacherAndDay(ctx context.Context, teacherID, dayOfWeek string) ([]models.Schedule, error)
}

// teacherLookup is the slice of teacher persistence the schedule rules need.
type teacherLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
	TeachesSubject(ctx context.Context, teacherID, subjectID string) (bool, error)
}

type existsLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ScheduleRequest captures fields for creating or updating schedules. Times
// are "HH:MM" wall-clock strings.
type ScheduleRequest struct {
	DayOfWeek string `json:"day_of_week" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartsAt  string `json:"starts_at" validate:"required"`
	EndsAt    string `json:"ends_at" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required,uuid4"`
	ClassID   string `json:"class_id" validate:"required,uuid4"`
	SubjectID string `json:"subject_id" validate:"required,uuid4"`
}

// ScheduleService enforces the scheduling rules on top of plain persistence:
// references must exist, the teacher must be linked to the subject, and a
// teacher cannot occupy two overlapping slots on the same day.
type ScheduleService struct {
	crudCore[models.Schedule]
	repo      scheduleRepository
	teachers  teacherLookup
	classes   existsLookup
	subjects  existsLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(repo scheduleRepository, teachers teacherLookup, classes, subjects existsLookup, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		crudCore:  newCRUDCore[models.Schedule](repo, "schedule", logger),
		repo:      repo,
		teachers:  teachers,
		classes:   classes,
		subjects:  subjects,
		validator: validate,
		logger:    logger,
	}
}

// Create adds a new schedule after validating references and overlap rules.
func (s *ScheduleService) Create(ctx context.Context, req ScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.prepare(ctx, "", req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCreateFailed.Code, appErrors.ErrCreateFailed.Status, "failed to create schedule")
	}
	s.logger.Info("schedule created",
		zap.String("id", schedule.ID),
		zap.String("teacher_id", schedule.TeacherID),
		zap.String("day", schedule.DayOfWeek))
	return schedule, nil
}

// Update modifies an existing schedule, re-running all placement rules.
func (s *ScheduleService) Update(ctx context.Context, id string, req ScheduleRequest) (*models.Schedule, error) {
	current, err := s.loadForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule, err := s.prepare(ctx, id, req)
	if err != nil {
		return nil, err
	}
	schedule.ID = current.ID
	schedule.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpdateFailed.Code, appErrors.ErrUpdateFailed.Status, "failed to update schedule")
	}
	return schedule, nil
}

// ListByTeacher returns a teacher's schedules with display names.
func (s *ScheduleService) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleDetail, error) {
	if err := s.requireExists(ctx, s.teachers, teacherID, "teacher"); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher schedules")
	}
	if items == nil {
		items = []models.ScheduleDetail{}
	}
	return items, nil
}

// ListByClass returns a class's schedules with display names.
func (s *ScheduleService) ListByClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error) {
	if err := s.requireExists(ctx, s.classes, classID, "class"); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class schedules")
	}
	if items == nil {
		items = []models.ScheduleDetail{}
	}
	return items, nil
}

// prepare validates the request and returns the schedule ready to persist.
// excludeID skips the record itself during the overlap scan on updates.
func (s *ScheduleService) prepare(ctx context.Context, excludeID string, req ScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidObject.Code, appErrors.ErrInvalidObject.Status, "invalid schedule payload")
	}

	startsAt, err := parseClock(req.StartsAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidObject, "starts_at must be HH:MM")
	}
	endsAt, err := parseClock(req.EndsAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidObject, "ends_at must be HH:MM")
	}
	if !startsAt.Before(endsAt) {
		return nil, appErrors.Clone(appErrors.ErrInvalidObject, "starts_at must be before ends_at")
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, excludeID, req, startsAt, endsAt); err != nil {
		return nil, err
	}

	return &models.Schedule{
		DayOfWeek: req.DayOfWeek,
		StartsAt:  startsAt.Format("15:04"),
		EndsAt:    endsAt.Format("15:04"),
		TeacherID: req.TeacherID,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
	}, nil
}

func (s *ScheduleService) checkReferences(ctx context.Context, req ScheduleRequest) error {
	if err := s.requireExists(ctx, s.teachers, req.TeacherID, "teacher"); err != nil {
		return err
	}
	if err := s.requireExists(ctx, s.classes, req.ClassID, "class"); err != nil {
		return err
	}
	if err := s.requireExists(ctx, s.subjects, req.SubjectID, "subject"); err != nil {
		return err
	}

	teaches, err := s.teachers.TeachesSubject(ctx, req.TeacherID, req.SubjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teacher subject link")
	}
	if !teaches {
		return appErrors.Clone(appErrors.ErrInvalidObject, "teacher is not linked to the subject")
	}
	return nil
}

func (s *ScheduleService) requireExists(ctx context.Context, lookup existsLookup, id, entity string) error {
	exists, err := lookup.Exists(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify "+entity)
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrInvalidObject, entity+" does not exist")
	}
	return nil
}

// checkOverlap rejects a slot when the teacher already occupies an
// intersecting [starts_at, ends_at) range on the same day.
func (s *ScheduleService) checkOverlap(ctx context.Context, excludeID string, req ScheduleRequest, startsAt, endsAt time.Time) error {
	existing, err := s.repo.ListByTeacherAndDay(ctx, req.TeacherID, req.DayOfWeek)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan teacher schedules")
	}

	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		otherStart, err := parseClock(other.StartsAt)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored schedule has an invalid time")
		}
		otherEnd, err := parseClock(other.EndsAt)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored schedule has an invalid time")
		}
		if startsAt.Before(otherEnd) && otherStart.Before(endsAt) {
			conflict := &models.ScheduleConflictError{
				Type: appErrors.ErrConflict.Code,
				Message: fmt.Sprintf("teacher already has a schedule on %s between %s and %s",
					other.DayOfWeek, other.StartsAt, other.EndsAt),
				Conflict: models.ScheduleConflict{
					ScheduleID: other.ID,
					TeacherID:  other.TeacherID,
					ClassID:    other.ClassID,
					DayOfWeek:  other.DayOfWeek,
					StartsAt:   other.StartsAt,
					EndsAt:     other.EndsAt,
					Dimension:  "teacher",
				},
			}
			return appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)
		}
	}
	return nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
