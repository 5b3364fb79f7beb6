package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-gpa-api/internal/models"
	"github.com/noah-isme/course-gpa-api/internal/repository"
	appErrors "github.com/noah-isme/course-gpa-api/pkg/errors"
)

type failingCourseRepo struct {
	err error
}

func (m *failingCourseRepo) List(ctx context.Context) ([]models.Course, error) { return nil, m.err }
func (m *failingCourseRepo) FindByID(ctx context.Context, id int) (*models.Course, error) {
	return nil, m.err
}
func (m *failingCourseRepo) FindByName(ctx context.Context, name string) (*models.Course, error) {
	return nil, m.err
}
func (m *failingCourseRepo) Create(ctx context.Context, course *models.Course) error { return m.err }
func (m *failingCourseRepo) Update(ctx context.Context, course *models.Course) error { return m.err }
func (m *failingCourseRepo) Delete(ctx context.Context, id int) error                { return m.err }
func (m *failingCourseRepo) Reset(ctx context.Context) error                         { return m.err }
func (m *failingCourseRepo) Count(ctx context.Context) (int, error)                  { return 0, m.err }

type mockCacheRepo struct {
	items       map[string]models.Course
	gets        int
	invalidated []string
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	course, ok := m.items[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	*(dest.(*models.Course)) = course
	return nil
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.items == nil {
		m.items = make(map[string]models.Course)
	}
	m.items[key] = *(value.(*models.Course))
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	m.items = nil
	return nil
}

// interleavingCourseRepo runs afterFind once a name lookup has loaded its result.
type interleavingCourseRepo struct {
	*repository.MemoryCourseRepository
	afterFind func()
}

func (r *interleavingCourseRepo) FindByName(ctx context.Context, name string) (*models.Course, error) {
	course, err := r.MemoryCourseRepository.FindByName(ctx, name)
	if r.afterFind != nil {
		hook := r.afterFind
		r.afterFind = nil
		hook()
	}
	return course, err
}

func intPtr(v int) *int { return &v }

func newCourseRequest(name string, credit int, coefficient int) CourseRequest {
	return CourseRequest{Name: name, Credit: intPtr(credit), Grade: &models.Grade{Coefficient: coefficient, Note: "A"}}
}

func newTestCourseService(repo courseRepository, cache *CourseCache) *CourseService {
	return NewCourseService(repo, cache, nil, validator.New(), zap.NewNop())
}

func requireStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, status, appErr.Status)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestCourseServiceCreateComputesGPA(t *testing.T) {
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), nil)

	result, err := svc.Create(context.Background(), newCourseRequest("Introduction to Spring", 3, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Course.ID)
	assert.Equal(t, 30, result.TotalGPA)

	result, err = svc.Create(context.Background(), newCourseRequest("Advanced Java Programming", 4, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Course.ID)
	assert.Equal(t, 40, result.TotalGPA)
}

func TestCourseServiceCreateValidation(t *testing.T) {
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), nil)
	ctx := context.Background()

	for _, credit := range []int{0, 5, -3} {
		_, err := svc.Create(ctx, newCourseRequest("Course", credit, 1))
		requireStatus(t, err, http.StatusBadRequest, msgCreditRange)
	}

	_, err := svc.Create(ctx, CourseRequest{})
	requireStatus(t, err, http.StatusBadRequest, msgCreditRange)

	_, err = svc.Create(ctx, newCourseRequest("   ", 2, 1))
	requireStatus(t, err, http.StatusBadRequest, msgNameBlank)

	_, err = svc.Create(ctx, CourseRequest{Name: "No Grade", Credit: intPtr(2)})
	requireStatus(t, err, http.StatusBadRequest, msgGradeMissing)
}

func TestCourseServiceCreateDuplicateNameIgnoringCase(t *testing.T) {
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, newCourseRequest("Data Structures", 3, 1))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newCourseRequest("data STRUCTURES", 2, 1))
	requireStatus(t, err, http.StatusBadRequest, msgDuplicateName)
}

func TestCourseServiceGetByName(t *testing.T) {
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), nil)
	ctx := context.Background()
	_, err := svc.Create(ctx, newCourseRequest("Networks", 2, 3))
	require.NoError(t, err)

	course, err := svc.GetByName(ctx, "NETWORKS")
	require.NoError(t, err)
	assert.Equal(t, "Networks", course.Name)

	_, err = svc.GetByName(ctx, "testCourseName")
	requireStatus(t, err, http.StatusNotFound, "Course not found with name: testCourseName")
}

func TestCourseServiceUpdate(t *testing.T) {
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), nil)
	ctx := context.Background()
	first, err := svc.Create(ctx, newCourseRequest("Algorithms", 3, 1))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newCourseRequest("Databases", 2, 1))
	require.NoError(t, err)

	result, err := svc.Update(ctx, first.Course.ID, newCourseRequest("algorithms", 4, 2))
	require.NoError(t, err)
	assert.Equal(t, first.Course.ID, result.Course.ID)
	assert.Equal(t, "algorithms", result.Course.Name)
	assert.Equal(t, 80, result.TotalGPA)

	_, err = svc.Update(ctx, first.Course.ID, newCourseRequest("DATABASES", 3, 1))
	requireStatus(t, err, http.StatusBadRequest, msgDuplicateOther)

	_, err = svc.Update(ctx, 99, newCourseRequest("Anything", 3, 1))
	requireStatus(t, err, http.StatusNotFound, "Course not found with id: 99")

	_, err = svc.Update(ctx, 99, newCourseRequest("Anything", 7, 1))
	requireStatus(t, err, http.StatusBadRequest, msgCreditRange)
}

func TestCourseServiceDeleteAndReset(t *testing.T) {
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), nil)
	ctx := context.Background()
	created, err := svc.Create(ctx, newCourseRequest("Compilers", 4, 1))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.Course.ID))
	requireStatus(t, svc.Delete(ctx, created.Course.ID), http.StatusNotFound, "Course not found with id: 1")
	_, err = svc.GetByName(ctx, "Compilers")
	requireStatus(t, err, http.StatusNotFound, "")

	_, err = svc.Create(ctx, newCourseRequest("Operating Systems", 4, 1))
	require.NoError(t, err)
	require.NoError(t, svc.Reset(ctx))

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)

	again, err := svc.Create(ctx, newCourseRequest("Operating Systems", 4, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, again.Course.ID)
}

func TestCourseServiceResults(t *testing.T) {
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), nil)
	ctx := context.Background()
	_, err := svc.Create(ctx, newCourseRequest("A", 1, 2))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newCourseRequest("B", 3, 2))
	require.NoError(t, err)

	results, err := svc.Results(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 6, results[0].TotalGPA)
	assert.Equal(t, 30, results[1].TotalGPA)
}

func TestCourseServiceWrapsStoreFailures(t *testing.T) {
	svc := newTestCourseService(&failingCourseRepo{err: errors.New("connection refused")}, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	requireStatus(t, err, http.StatusInternalServerError, "")
	_, err = svc.GetByName(ctx, "x")
	requireStatus(t, err, http.StatusInternalServerError, "")
	_, err = svc.Create(ctx, newCourseRequest("x", 1, 1))
	requireStatus(t, err, http.StatusInternalServerError, "")
	_, err = svc.Update(ctx, 1, newCourseRequest("x", 1, 1))
	requireStatus(t, err, http.StatusInternalServerError, "")
	requireStatus(t, svc.Delete(ctx, 1), http.StatusInternalServerError, "")
	requireStatus(t, svc.Reset(ctx), http.StatusInternalServerError, "")
}

func TestCourseServiceUsesCacheForNameLookups(t *testing.T) {
	cacheRepo := &mockCacheRepo{}
	cache := NewCourseCache(cacheRepo, nil, time.Minute, zap.NewNop())
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, newCourseRequest("Graphics", 2, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"courses:*"}, cacheRepo.invalidated)

	_, err = svc.GetByName(ctx, "Graphics")
	require.NoError(t, err)
	require.Contains(t, cacheRepo.items, "courses:name:graphics")

	cacheRepo.items["courses:name:graphics"] = models.Course{ID: 1, Name: "Graphics (cached)", Credit: 2}
	course, err := svc.GetByName(ctx, "graphics")
	require.NoError(t, err)
	assert.Equal(t, "Graphics (cached)", course.Name)

	require.NoError(t, svc.Delete(ctx, 1))
	assert.Len(t, cacheRepo.invalidated, 2)
	_, err = svc.GetByName(ctx, "Graphics")
	requireStatus(t, err, http.StatusNotFound, "")
}

func TestCourseServiceCacheKeepsStoreNameMatching(t *testing.T) {
	cacheRepo := &mockCacheRepo{}
	cache := NewCourseCache(cacheRepo, nil, time.Minute, zap.NewNop())
	svc := newTestCourseService(repository.NewMemoryCourseRepository(), cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, newCourseRequest("Math", 2, 1))
	require.NoError(t, err)
	_, err = svc.GetByName(ctx, "Math")
	require.NoError(t, err)
	require.Contains(t, cacheRepo.items, "courses:name:math")

	_, err = svc.GetByName(ctx, "Math ")
	requireStatus(t, err, http.StatusNotFound, "Course not found with name: Math ")
	_, err = svc.GetByName(ctx, " MATH")
	requireStatus(t, err, http.StatusNotFound, "Course not found with name:  MATH")
}

func TestCourseServiceSkipsCachingWhenDeletedDuringLookup(t *testing.T) {
	cacheRepo := &mockCacheRepo{}
	cache := NewCourseCache(cacheRepo, nil, time.Minute, zap.NewNop())
	repo := &interleavingCourseRepo{MemoryCourseRepository: repository.NewMemoryCourseRepository()}
	svc := newTestCourseService(repo, cache)
	ctx := context.Background()

	created, err := svc.Create(ctx, newCourseRequest("Optics", 3, 2))
	require.NoError(t, err)

	repo.afterFind = func() {
		require.NoError(t, svc.Delete(ctx, created.Course.ID))
	}
	_, err = svc.GetByName(ctx, "Optics")
	require.NoError(t, err)
	assert.NotContains(t, cacheRepo.items, "courses:name:optics")

	_, err = svc.GetByName(ctx, "Optics")
	requireStatus(t, err, http.StatusNotFound, "Course not found with name: Optics")
}

func TestCourseCacheStoreRespectsGeneration(t *testing.T) {
	cacheRepo := &mockCacheRepo{}
	cache := NewCourseCache(cacheRepo, nil, time.Minute, zap.NewNop())
	ctx := context.Background()
	course := &models.Course{ID: 1, Name: "Optics", Credit: 3}

	stale := cache.Generation()
	cache.Invalidate(ctx)
	cache.Store(ctx, course, stale)
	assert.Empty(t, cacheRepo.items)

	cache.Store(ctx, course, cache.Generation())
	assert.Contains(t, cacheRepo.items, "courses:name:optics")

	var disabled *CourseCache
	assert.Zero(t, disabled.Generation())
	disabled.Store(ctx, course, 0)
}

func TestCourseServiceRecordsMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCourseService(repository.NewMemoryCourseRepository(), nil, metrics, nil, nil)

	_, err := svc.Create(context.Background(), newCourseRequest("Metrics", 3, 1))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), newCourseRequest("More Metrics", 3, 1))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), 1))

	w := scrape(t, metrics)
	assert.Contains(t, w, "courses_stored 1")
	assert.Contains(t, w, `course_writes_total{operation="create"} 2`)
	assert.Contains(t, w, `course_writes_total{operation="delete"} 1`)
}
