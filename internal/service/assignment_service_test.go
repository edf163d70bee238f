package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path"
	"sort"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/internal/repository"
	"github.com/noah-isme/internship-portal-api/pkg/config"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

// memInternshipRepo mimics the guarded single-statement updates of the
// postgres repository against maps.
type memInternshipRepo struct {
	items    map[string]*models.Internship
	students *memStudentRepo

	writes         int
	propagateCalls int
	propagateErr   error
	clearErr       error
	beforeAppend   func(item *models.Internship)
	beforeComplete func(item *models.Internship)
}

func (m *memInternshipRepo) get(id string) (*models.Internship, bool) {
	item, ok := m.items[id]
	return item, ok
}

func cloneInternship(item *models.Internship) *models.Internship {
	cp := *item
	cp.AssignedStudents = append(pq.StringArray{}, item.AssignedStudents...)
	cp.AssignedFaculty = append(pq.StringArray{}, item.AssignedFaculty...)
	cp.AssignedDepartment = append(pq.StringArray{}, item.AssignedDepartment...)
	return &cp
}

func (m *memInternshipRepo) List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, int, error) {
	var out []models.Internship
	for _, item := range m.items {
		if filter.UniversityID != "" && item.UniversityID != filter.UniversityID {
			continue
		}
		out = append(out, *cloneInternship(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memInternshipRepo) ListByUniversity(ctx context.Context, universityID string) ([]models.Internship, error) {
	out, _, err := m.List(ctx, models.InternshipFilter{UniversityID: universityID})
	return out, err
}

func (m *memInternshipRepo) FindByID(ctx context.Context, id string) (*models.Internship, error) {
	if item, ok := m.get(id); ok {
		return cloneInternship(item), nil
	}
	return nil, sql.ErrNoRows
}

func (m *memInternshipRepo) Create(ctx context.Context, item *models.Internship) error {
	if m.items == nil {
		m.items = make(map[string]*models.Internship)
	}
	if item.ID == "" {
		item.ID = "generated"
	}
	item.IsApproved = false
	item.IsComplete = false
	item.AssignedStudents = pq.StringArray{}
	item.AssignedFaculty = pq.StringArray{}
	item.Normalize()
	m.writes++
	m.items[item.ID] = cloneInternship(item)
	return nil
}

func (m *memInternshipRepo) Update(ctx context.Context, item *models.Internship) error {
	current, ok := m.get(item.ID)
	if !ok {
		return sql.ErrNoRows
	}
	next := cloneInternship(item)
	next.AssignedStudents = current.AssignedStudents
	next.AssignedFaculty = current.AssignedFaculty
	next.IsApproved = current.IsApproved
	next.IsComplete = current.IsComplete
	m.writes++
	m.items[item.ID] = next
	return nil
}

func (m *memInternshipRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.get(id); !ok {
		return sql.ErrNoRows
	}
	m.writes++
	delete(m.items, id)
	return nil
}

func (m *memInternshipRepo) AppendStudent(ctx context.Context, id, studentID string, guard repository.Guard) (*models.Internship, error) {
	item, ok := m.get(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	if m.beforeAppend != nil {
		m.beforeAppend(item)
	}
	if item.HasStudent(studentID) ||
		(guard.RequireOpen && item.IsComplete) ||
		(guard.EnforceCapacity && len(item.AssignedStudents) >= item.NumberOfStudents) {
		return nil, sql.ErrNoRows
	}
	item.AssignedStudents = append(item.AssignedStudents, studentID)
	m.writes++
	return cloneInternship(item), nil
}

func (m *memInternshipRepo) RemoveStudent(ctx context.Context, id, studentID string, guard repository.Guard) (*models.Internship, error) {
	item, ok := m.get(id)
	if !ok || !item.HasStudent(studentID) || (guard.RequireOpen && item.IsComplete) {
		return nil, sql.ErrNoRows
	}
	kept := pq.StringArray{}
	for _, s := range item.AssignedStudents {
		if s != studentID {
			kept = append(kept, s)
		}
	}
	item.AssignedStudents = kept
	m.writes++
	return cloneInternship(item), nil
}

func (m *memInternshipRepo) AppendFaculty(ctx context.Context, id, facultyID string, guard repository.Guard) (*models.Internship, error) {
	item, ok := m.get(id)
	if !ok || item.HasFaculty(facultyID) || (guard.RequireOpen && item.IsComplete) {
		return nil, sql.ErrNoRows
	}
	item.AssignedFaculty = append(item.AssignedFaculty, facultyID)
	m.writes++
	return cloneInternship(item), nil
}

func (m *memInternshipRepo) MarkComplete(ctx context.Context, id string) (*models.Internship, error) {
	item, ok := m.get(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	if m.beforeComplete != nil {
		m.beforeComplete(item)
	}
	item.IsComplete = true
	m.writes++
	return cloneInternship(item), nil
}

func (m *memInternshipRepo) SetApproval(ctx context.Context, id string, approved bool, guard repository.Guard) (*models.Internship, error) {
	item, ok := m.get(id)
	if !ok || (guard.RequireOpen && item.IsComplete) {
		return nil, sql.ErrNoRows
	}
	item.IsApproved = approved
	m.writes++
	return cloneInternship(item), nil
}

func (m *memInternshipRepo) MarkStudentsCompleted(ctx context.Context, studentIDs []string) (int64, error) {
	m.propagateCalls++
	if m.propagateErr != nil {
		return 0, m.propagateErr
	}
	return m.students.markCompleted(studentIDs), nil
}

func (m *memInternshipRepo) inCompleted(studentID string) bool {
	for _, item := range m.items {
		if item.IsComplete && item.HasStudent(studentID) {
			return true
		}
	}
	return false
}

func (m *memInternshipRepo) ClearStaleCompletions(ctx context.Context, studentIDs []string) (int64, error) {
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	var n int64
	for _, id := range studentIDs {
		if s, ok := m.students.items[id]; ok && s.DidInternship && !m.inCompleted(id) {
			s.DidInternship = false
			n++
		}
	}
	return n, nil
}

func (m *memInternshipRepo) ReconcileCompletedStudents(ctx context.Context) (int64, error) {
	var flag, all []string
	for _, item := range m.items {
		if item.IsComplete {
			flag = append(flag, item.AssignedStudents...)
		}
	}
	for id := range m.students.items {
		all = append(all, id)
	}
	repaired := m.students.markCompleted(flag)
	cleared, err := m.ClearStaleCompletions(ctx, all)
	return repaired + cleared, err
}

type memStudentRepo struct {
	items map[string]*models.Student
}

func (m *memStudentRepo) markCompleted(ids []string) int64 {
	var n int64
	for _, id := range ids {
		if s, ok := m.items[id]; ok && !s.DidInternship {
			s.DidInternship = true
			n++
		}
	}
	return n
}

func (m *memStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStudentRepo) ListByUniversity(ctx context.Context, universityID, departmentID string) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range m.items {
		if s.UniversityID != universityID {
			continue
		}
		if departmentID != "" && s.DepartmentID != departmentID {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memFacultyRepo struct {
	items map[string]*models.Faculty
}

func (m *memFacultyRepo) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if f, ok := m.items[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

// memCacheRepo stores JSON payloads and matches patterns the way redis SCAN does for simple globs.
type memCacheRepo struct {
	items map[string][]byte
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{items: make(map[string][]byte)}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	removed := 0
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
			removed++
		}
	}
	return removed, nil
}

type assignmentFixture struct {
	internships *memInternshipRepo
	students    *memStudentRepo
	faculty     *memFacultyRepo
	cache       *memCacheRepo
	service     *AssignmentService
}

func newAssignmentFixture(policy config.AssignmentConfig) *assignmentFixture {
	students := &memStudentRepo{items: map[string]*models.Student{
		"S1": {ID: "S1", UniversityID: "U1", DepartmentID: "D1", FirstName: "Ayesha"},
		"S2": {ID: "S2", UniversityID: "U1", DepartmentID: "D1", FirstName: "Bilal"},
		"S3": {ID: "S3", UniversityID: "U1", DepartmentID: "D2", FirstName: "Chand"},
		"S4": {ID: "S4", UniversityID: "U1", DepartmentID: "D1", FirstName: "Danish"},
		"S5": {ID: "S5", UniversityID: "U1", DepartmentID: "D2", FirstName: "Erum"},
		"X1": {ID: "X1", UniversityID: "U2", DepartmentID: "D9", FirstName: "Faraz"},
	}}
	internships := &memInternshipRepo{
		students: students,
		items: map[string]*models.Internship{
			"I1": {ID: "I1", UniversityID: "U1", Title: "Backend", NumberOfStudents: 3, AssignedStudents: pq.StringArray{"S1", "S2"}, AssignedFaculty: pq.StringArray{}},
			"I2": {ID: "I2", UniversityID: "U1", Title: "Data", NumberOfStudents: 1, AssignedStudents: pq.StringArray{"S3"}, AssignedFaculty: pq.StringArray{}},
			"I3": {ID: "I3", UniversityID: "U1", Title: "Empty", NumberOfStudents: 2, AssignedStudents: pq.StringArray{}, AssignedFaculty: pq.StringArray{}},
		},
	}
	faculty := &memFacultyRepo{items: map[string]*models.Faculty{"F1": {ID: "F1", FirstName: "Imran", LastName: "Khan"}}}
	cacheRepo := newMemCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)

	return &assignmentFixture{
		internships: internships,
		students:    students,
		faculty:     faculty,
		cache:       cacheRepo,
		service:     NewAssignmentService(internships, students, faculty, cache, nil, policy, zap.NewNop()),
	}
}

func studentIDs(items []models.Student) []string {
	ids := make([]string, 0, len(items))
	for _, s := range items {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestAssignStudentAddsToSet(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})

	updated, err := f.service.AssignStudentToInternship(context.Background(), "I3", "S4")
	require.NoError(t, err)
	assert.Equal(t, []string{"S4"}, []string(updated.AssignedStudents))
	assert.Equal(t, 1, f.internships.writes)
}

func TestAssignStudentIsIdempotent(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()

	first, err := f.service.AssignStudentToInternship(ctx, "I3", "S4")
	require.NoError(t, err)
	second, err := f.service.AssignStudentToInternship(ctx, "I3", "S4")
	require.NoError(t, err)

	assert.Equal(t, first.AssignedStudents, second.AssignedStudents)
	assert.Len(t, f.internships.items["I3"].AssignedStudents, 1)
	assert.Equal(t, 1, f.internships.writes)
}

func TestAssignStudentNotFoundPerformsNoWrite(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()

	_, err := f.service.AssignStudentToInternship(ctx, "missing", "S4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.service.AssignStudentToInternship(ctx, "I3", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "student not found", appErrors.FromError(err).Message)

	assert.Zero(t, f.internships.writes)
	assert.Empty(t, f.internships.items["I3"].AssignedStudents)
}

func TestAssignStudentRequiresIdentifiers(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})

	_, err := f.service.AssignStudentToInternship(context.Background(), " ", "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "internshipId is required")
	assert.Contains(t, appErr.Message, "studentId is required")
}

func TestAssignStudentPermissiveByDefault(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()
	f.internships.items["I2"].IsComplete = true

	updated, err := f.service.AssignStudentToInternship(ctx, "I2", "S4")
	require.NoError(t, err)
	assert.Len(t, updated.AssignedStudents, 2)
}

func TestAssignStudentHonoursGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("capacity", func(t *testing.T) {
		f := newAssignmentFixture(config.AssignmentConfig{EnforceCapacity: true})
		_, err := f.service.AssignStudentToInternship(ctx, "I2", "S4")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrCapacityReached))
		assert.Zero(t, f.internships.writes)
	})

	t.Run("completed", func(t *testing.T) {
		f := newAssignmentFixture(config.AssignmentConfig{LockCompleted: true})
		f.internships.items["I3"].IsComplete = true
		_, err := f.service.AssignStudentToInternship(ctx, "I3", "S4")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrFinalized))
	})

	t.Run("completed concurrently", func(t *testing.T) {
		f := newAssignmentFixture(config.AssignmentConfig{LockCompleted: true})
		f.internships.beforeAppend = func(item *models.Internship) { item.IsComplete = true }
		_, err := f.service.AssignStudentToInternship(ctx, "I3", "S4")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrFinalized))
		assert.Empty(t, f.internships.items["I3"].AssignedStudents)
	})

	t.Run("assigned concurrently", func(t *testing.T) {
		f := newAssignmentFixture(config.AssignmentConfig{})
		f.internships.beforeAppend = func(item *models.Internship) {
			item.AssignedStudents = append(item.AssignedStudents, "S4")
		}
		updated, err := f.service.AssignStudentToInternship(ctx, "I3", "S4")
		require.NoError(t, err)
		assert.Equal(t, []string{"S4"}, []string(updated.AssignedStudents))
	})
}

func TestUnassignStudent(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()

	updated, err := f.service.UnassignStudent(ctx, "I1", "S1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, []string(updated.AssignedStudents))

	again, err := f.service.UnassignStudent(ctx, "I1", "S1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, []string(again.AssignedStudents))
	assert.Equal(t, 1, f.internships.writes)

	_, err = f.service.UnassignStudent(ctx, "missing", "S1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUnassignStudentFromCompletedInternshipClearsDidInternship(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()

	_, err := f.service.CompleteInternship(ctx, "I1")
	require.NoError(t, err)
	require.True(t, f.students.items["S1"].DidInternship)

	updated, err := f.service.UnassignStudent(ctx, "I1", "S1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, []string(updated.AssignedStudents))
	assert.False(t, f.students.items["S1"].DidInternship)
	assert.True(t, f.students.items["S2"].DidInternship)

	result, err := f.service.ReconcileCompletions(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.StudentsRepaired)
	assert.False(t, f.students.items["S1"].DidInternship)
}

func TestUnassignStudentKeepsFlagWhenAnotherCompletedInternshipHoldsStudent(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()
	f.internships.items["I3"].AssignedStudents = append(f.internships.items["I3"].AssignedStudents, "S1")

	_, err := f.service.CompleteInternship(ctx, "I1")
	require.NoError(t, err)
	_, err = f.service.CompleteInternship(ctx, "I3")
	require.NoError(t, err)

	_, err = f.service.UnassignStudent(ctx, "I1", "S1")
	require.NoError(t, err)
	assert.True(t, f.students.items["S1"].DidInternship)
}

func TestUnassignStudentClearFailureIsRepairable(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()

	_, err := f.service.CompleteInternship(ctx, "I1")
	require.NoError(t, err)

	f.internships.clearErr = errors.New("connection reset")
	_, err = f.service.UnassignStudent(ctx, "I1", "S1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.False(t, f.internships.items["I1"].HasStudent("S1"))
	assert.True(t, f.students.items["S1"].DidInternship)

	f.internships.clearErr = nil
	result, err := f.service.ReconcileCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.StudentsRepaired)
	assert.False(t, f.students.items["S1"].DidInternship)
}

func TestReconcileCompletionsClearsStaleFlags(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()
	f.students.items["S4"].DidInternship = true

	result, err := f.service.ReconcileCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.StudentsRepaired)
	assert.False(t, f.students.items["S4"].DidInternship)
}

func TestAssignFaculty(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()

	updated, err := f.service.AssignFaculty(ctx, "I1", "F1")
	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, []string(updated.AssignedFaculty))

	_, err = f.service.AssignFaculty(ctx, "I1", "F1")
	require.NoError(t, err)
	assert.Len(t, f.internships.items["I1"].AssignedFaculty, 1)

	_, err = f.service.AssignFaculty(ctx, "I1", "F404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUnassignedStudents(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()

	students, err := f.service.UnassignedStudents(ctx, "U1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"S4", "S5"}, studentIDs(students))

	filtered, err := f.service.UnassignedStudents(ctx, "U1", "D2")
	require.NoError(t, err)
	assert.Equal(t, []string{"S5"}, studentIDs(filtered))
}

func TestUnassignedStudentsWithoutInternships(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})

	students, err := f.service.UnassignedStudents(context.Background(), "U2", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"X1"}, studentIDs(students))

	none, err := f.service.UnassignedStudents(context.Background(), "U404", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUnassignedStudentsCacheInvalidatedOnAssign(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()

	_, err := f.service.UnassignedStudents(ctx, "U1", "")
	require.NoError(t, err)
	assert.Contains(t, f.cache.items, UnassignedCacheKey("U1", ""))

	_, err = f.service.AssignStudentToInternship(ctx, "I3", "S4")
	require.NoError(t, err)
	assert.NotContains(t, f.cache.items, UnassignedCacheKey("U1", ""))

	students, err := f.service.UnassignedStudents(ctx, "U1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"S5"}, studentIDs(students))
}

func TestCompleteInternshipPropagatesToAssignedStudents(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	f.internships.items["I1"].AssignedStudents = pq.StringArray{"S1", "S2", "S3"}

	result, err := f.service.CompleteInternship(context.Background(), "I1")
	require.NoError(t, err)
	assert.True(t, result.IsComplete)
	assert.Equal(t, int64(3), result.StudentsUpdated)
	assert.True(t, f.internships.items["I1"].IsComplete)
	for _, id := range []string{"S1", "S2", "S3"} {
		assert.True(t, f.students.items[id].DidInternship, id)
	}
	assert.False(t, f.students.items["S4"].DidInternship)
	assert.False(t, f.students.items["S5"].DidInternship)
}

func TestCompleteInternshipWithoutStudents(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})

	result, err := f.service.CompleteInternship(context.Background(), "I3")
	require.NoError(t, err)
	assert.True(t, result.IsComplete)
	assert.Empty(t, result.AssignedStudents)
	assert.Zero(t, f.internships.propagateCalls)
	for _, s := range f.students.items {
		assert.False(t, s.DidInternship)
	}
}

func TestCompleteInternshipUsesSetAfterCompletion(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	f.internships.beforeComplete = func(item *models.Internship) {
		item.AssignedStudents = append(item.AssignedStudents, "S4")
	}

	result, err := f.service.CompleteInternship(context.Background(), "I1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"S1", "S2", "S4"}, result.AssignedStudents)
	assert.True(t, f.students.items["S4"].DidInternship)
}

func TestCompleteInternshipNotFound(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})

	_, err := f.service.CompleteInternship(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, f.internships.writes)
}

func TestCompleteInternshipPropagationFailureIsRepairable(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()
	f.internships.propagateErr = errors.New("connection reset")

	_, err := f.service.CompleteInternship(ctx, "I1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.True(t, f.internships.items["I1"].IsComplete)
	assert.False(t, f.students.items["S1"].DidInternship)

	f.internships.propagateErr = nil
	result, err := f.service.ReconcileCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.StudentsRepaired)
	assert.True(t, f.students.items["S1"].DidInternship)
	assert.True(t, f.students.items["S2"].DidInternship)

	again, err := f.service.CompleteInternship(ctx, "I1")
	require.NoError(t, err)
	assert.Zero(t, again.StudentsUpdated)
}

func TestApproveInternship(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{LockCompleted: true})
	ctx := context.Background()

	updated, err := f.service.ApproveInternship(ctx, "I1", true)
	require.NoError(t, err)
	assert.True(t, updated.IsApproved)

	f.internships.items["I2"].IsComplete = true
	_, err = f.service.ApproveInternship(ctx, "I2", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrFinalized))

	_, err = f.service.ApproveInternship(ctx, "missing", true)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReconcileCompletionsIsIdempotent(t *testing.T) {
	f := newAssignmentFixture(config.AssignmentConfig{})
	ctx := context.Background()
	f.internships.items["I2"].IsComplete = true

	first, err := f.service.ReconcileCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.StudentsRepaired)
	assert.True(t, f.students.items["S3"].DidInternship)

	second, err := f.service.ReconcileCompletions(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.StudentsRepaired)
}
