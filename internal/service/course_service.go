package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-gpa-api/internal/models"
	"github.com/noah-isme/course-gpa-api/internal/repository"
	appErrors "github.com/noah-isme/course-gpa-api/pkg/errors"
)

const (
	msgCreditRange    = "Credit value must be between 1 and 4."
	msgNameBlank      = "Course name cannot be blank."
	msgGradeMissing   = "Course grade cannot be null."
	msgDuplicateName  = "Course with the same name already exists."
	msgDuplicateOther = "Another course with the same name exists."
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int) (*models.Course, error)
	FindByName(ctx context.Context, name string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int) error
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// CourseRequest is the payload accepted for create and update. Pointers distinguish
// absent fields from zero values. Field order sets which failure is reported first.
type CourseRequest struct {
	Credit *int          `json:"credit" validate:"required,min=1,max=4"`
	Name   string        `json:"name" validate:"notblank"`
	Grade  *models.Grade `json:"grade" validate:"required"`
}

// CourseService validates and applies course operations.
type CourseService struct {
	repo      courseRepository
	cache     *CourseCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service. cache and metrics may be nil.
func NewCourseService(repo courseRepository, cache *CourseCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// List returns every course.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	s.logger.Info("listing courses", zap.Int("count", len(courses)))
	return courses, nil
}

// GetByName returns the course whose name matches ignoring case.
func (s *CourseService) GetByName(ctx context.Context, name string) (*models.Course, error) {
	s.logger.Info("looking up course", zap.String("name", name))
	if cached, ok := s.cache.Lookup(ctx, name); ok {
		return cached, nil
	}
	generation := s.cache.Generation()

	course, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, appErrors.NotFound("Course not found with name: " + name)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	s.cache.Store(ctx, course, generation)
	return course, nil
}

// Create validates and stores a new course.
func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.CourseResult, error) {
	s.logger.Info("adding course", zap.String("name", req.Name))
	if err := s.validate(req); err != nil {
		return nil, err
	}

	course := courseFromRequest(req)
	if err := s.repo.Create(ctx, &course); err != nil {
		if errors.Is(err, repository.ErrDuplicateCourseName) {
			return nil, appErrors.Validation(msgDuplicateName)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	result, err := withGPA(course)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "create")
	s.logger.Info("course added", zap.Int("id", course.ID), zap.Int("total_gpa", result.TotalGPA))
	return result, nil
}

// Update replaces name, credit and grade of the course with the given id.
func (s *CourseService) Update(ctx context.Context, id int, req CourseRequest) (*models.CourseResult, error) {
	s.logger.Info("updating course", zap.Int("id", id))
	if err := s.validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, s.mapLookupError(err, id)
	}

	course := courseFromRequest(req)
	course.ID = id
	if err := s.repo.Update(ctx, &course); err != nil {
		if errors.Is(err, repository.ErrDuplicateCourseName) {
			return nil, appErrors.Validation(msgDuplicateOther)
		}
		return nil, s.mapLookupError(err, id)
	}

	result, err := withGPA(course)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "update")
	s.logger.Info("course updated", zap.Int("id", id), zap.String("name", course.Name))
	return result, nil
}

// Delete removes the course with the given id.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	s.logger.Info("deleting course", zap.Int("id", id))
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}
	s.afterWrite(ctx, "delete")
	return nil
}

// Reset empties the store and restarts id assignment.
func (s *CourseService) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset courses")
	}
	s.afterWrite(ctx, "reset")
	s.logger.Warn("course store reset")
	return nil
}

// Results returns every course paired with its total GPA.
func (s *CourseService) Results(ctx context.Context) ([]models.CourseResult, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]models.CourseResult, 0, len(courses))
	for _, course := range courses {
		result, err := withGPA(course)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *CourseService) validate(req CourseRequest) error {
	err := s.validator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	switch fieldErrs[0].Field() {
	case "Credit":
		return appErrors.Validation(msgCreditRange)
	case "Name":
		return appErrors.Validation(msgNameBlank)
	case "Grade":
		return appErrors.Validation(msgGradeMissing)
	}
	return appErrors.Clone(appErrors.ErrValidation, "invalid course payload")
}

func (s *CourseService) mapLookupError(err error, id int) error {
	if errors.Is(err, repository.ErrCourseNotFound) {
		return appErrors.NotFound(fmt.Sprintf("Course not found with id: %d", id))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to access course")
}

func (s *CourseService) afterWrite(ctx context.Context, operation string) {
	s.cache.Invalidate(ctx)
	s.metrics.RecordCourseWrite(operation)
	if s.metrics == nil {
		return
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Warn("count courses failed", zap.Error(err))
		return
	}
	s.metrics.SetCourseCount(count)
}

func courseFromRequest(req CourseRequest) models.Course {
	return models.Course{Name: req.Name, Credit: *req.Credit, Grade: *req.Grade}
}

func withGPA(course models.Course) (*models.CourseResult, error) {
	total, err := TotalGPA(course)
	if err != nil {
		return nil, err
	}
	return &models.CourseResult{Course: course, TotalGPA: total}, nil
}
