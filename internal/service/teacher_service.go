package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/isagps/ProfAgendaBack/internal/models"
	appErrors "github.com/isagps/ProfAgendaBack/pkg/errors"
)

type teacherRepository interface {
	crudRepository[models.Teacher]
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	UpdateWithSubjects(ctx context.Context, teacher *models.Teacher, subjectIDs []string, replaceLinks bool) error
	SubjectsByTeacher(ctx context.Context, teacherID string) ([]models.Subject, error)
	ReplaceSubjects(ctx context.Context, teacherID string, subjectIDs []string) error
	CountSubjects(ctx context.Context, subjectIDs []string) (int, error)
}

// CreateTeacherRequest captures fields for creating teachers.
type CreateTeacherRequest struct {
	Name       string   `json:"name" validate:"required"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	Phone      *string  `json:"phone" validate:"omitempty,max=32"`
	SubjectIDs []string `json:"subject_ids" validate:"omitempty,dive,uuid4"`
}

// UpdateTeacherRequest modifies teacher fields. SubjectIDs replaces the full
// set of subject links, nil leaves the links untouched.
type UpdateTeacherRequest struct {
	Name       string   `json:"name" validate:"required"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	Phone      *string  `json:"phone" validate:"omitempty,max=32"`
	SubjectIDs []string `json:"subject_ids" validate:"omitempty,dive,uuid4"`
}

// TeacherService handles teacher domain workflows including subject links.
type TeacherService struct {
	crudCore[models.Teacher]
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService creates a new teacher service.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{
		crudCore:  newCRUDCore[models.Teacher](repo, "teacher", logger),
		repo:      repo,
		validator: validate,
		logger:    logger,
	}
}

// Create adds a new teacher and links the given subjects.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	// Trim first so a whitespace-only name fails required validation.
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidObject.Code, appErrors.ErrInvalidObject.Status, "invalid teacher payload")
	}

	subjectIDs := dedupe(req.SubjectIDs)

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "teacher name already exists")
	}

	if err := s.checkSubjectIDs(ctx, subjectIDs); err != nil {
		return nil, err
	}

	teacher := &models.Teacher{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCreateFailed.Code, appErrors.ErrCreateFailed.Status, "failed to create teacher")
	}

	if len(subjectIDs) > 0 {
		if err := s.repo.ReplaceSubjects(ctx, teacher.ID, subjectIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCreateFailed.Code, appErrors.ErrCreateFailed.Status, "failed to link teacher subjects")
		}
	}

	s.logger.Info("teacher created", zap.String("id", teacher.ID), zap.Int("subjects", len(subjectIDs)))
	return teacher, nil
}

// Update modifies an existing teacher and, when subject ids are supplied,
// replaces its subject links. The row update and the link replacement commit
// together, so a link failure never leaves a half-applied update.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidObject.Code, appErrors.ErrInvalidObject.Status, "invalid teacher payload")
	}

	teacher, err := s.loadForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "teacher name already exists")
	}

	var subjectIDs []string
	if req.SubjectIDs != nil {
		subjectIDs = dedupe(req.SubjectIDs)
		if err := s.checkSubjectIDs(ctx, subjectIDs); err != nil {
			return nil, err
		}
	}

	teacher.Name = req.Name
	teacher.Email = req.Email
	teacher.Phone = req.Phone
	if err := s.repo.UpdateWithSubjects(ctx, teacher, subjectIDs, req.SubjectIDs != nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpdateFailed.Code, appErrors.ErrUpdateFailed.Status, "failed to update teacher")
	}
	return teacher, nil
}

// GetDetail returns a teacher with its linked subjects.
func (s *TeacherService) GetDetail(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	subjects, err := s.repo.SubjectsByTeacher(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return &models.TeacherDetail{Teacher: *teacher, Subjects: subjects}, nil
}

// Subjects returns the subjects linked to an existing teacher.
func (s *TeacherService) Subjects(ctx context.Context, id string) ([]models.Subject, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	subjects, err := s.repo.SubjectsByTeacher(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, nil
}

func (s *TeacherService) checkSubjectIDs(ctx context.Context, subjectIDs []string) error {
	if len(subjectIDs) == 0 {
		return nil
	}
	count, err := s.repo.CountSubjects(ctx, subjectIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify subjects")
	}
	if count != len(subjectIDs) {
		return appErrors.Clone(appErrors.ErrInvalidObject, "one or more subject ids do not exist")
	}
	return nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
