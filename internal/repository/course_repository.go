package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/course-gpa-api/internal/models"
)

var (
	// ErrCourseNotFound is returned when no course matches the lookup.
	ErrCourseNotFound = errors.New("course not found")
	// ErrDuplicateCourseName is returned when another course already owns the name.
	ErrDuplicateCourseName = errors.New("course name already exists")
)

// CourseStore is implemented by every course backend.
type CourseStore interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int) (*models.Course, error)
	FindByName(ctx context.Context, name string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int) error
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

var (
	_ CourseStore = (*MemoryCourseRepository)(nil)
	_ CourseStore = (*PostgresCourseRepository)(nil)
)

// MemoryCourseRepository keeps courses in process memory. All state is guarded by mu so
// uniqueness checks and writes happen atomically.
type MemoryCourseRepository struct {
	mu      sync.RWMutex
	courses map[int]models.Course
	nextID  int
}

// NewMemoryCourseRepository creates an empty store whose first id is 1.
func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{courses: make(map[int]models.Course), nextID: 1}
}

// List returns all courses in creation order.
func (r *MemoryCourseRepository) List(ctx context.Context) ([]models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	courses := make([]models.Course, 0, len(r.courses))
	for _, course := range r.courses {
		courses = append(courses, course)
	}
	// ids are assigned monotonically, so id order is insertion order
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

// FindByID returns the course with the given id.
func (r *MemoryCourseRepository) FindByID(ctx context.Context, id int) (*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	course, ok := r.courses[id]
	if !ok {
		return nil, ErrCourseNotFound
	}
	return &course, nil
}

// FindByName looks a course up ignoring case.
func (r *MemoryCourseRepository) FindByName(ctx context.Context, name string) (*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.idByName(name); ok {
		course := r.courses[id]
		return &course, nil
	}
	return nil, ErrCourseNotFound
}

// Create stores the course under the next id and writes the id back.
func (r *MemoryCourseRepository) Create(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.idByName(course.Name); exists {
		return ErrDuplicateCourseName
	}

	course.ID = r.nextID
	r.nextID++
	r.courses[course.ID] = *course
	return nil
}

// Update replaces name, credit and grade of an existing course.
func (r *MemoryCourseRepository) Update(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[course.ID]; !ok {
		return ErrCourseNotFound
	}
	if owner, exists := r.idByName(course.Name); exists && owner != course.ID {
		return ErrDuplicateCourseName
	}
	r.courses[course.ID] = *course
	return nil
}

// Delete removes the course with the given id.
func (r *MemoryCourseRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

// Reset drops every course and restarts id assignment at 1.
func (r *MemoryCourseRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.courses = make(map[int]models.Course)
	r.nextID = 1
	return nil
}

// Count returns the number of stored courses.
func (r *MemoryCourseRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.courses), nil
}

// idByName must be called with mu held.
func (r *MemoryCourseRepository) idByName(name string) (int, bool) {
	for id, course := range r.courses {
		if strings.EqualFold(course.Name, name) {
			return id, true
		}
	}
	return 0, false
}
