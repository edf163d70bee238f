package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
	"github.com/noah-isme/internship-portal-api/internal/models"
	"github.com/noah-isme/internship-portal-api/internal/repository"
	"github.com/noah-isme/internship-portal-api/pkg/config"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
)

type assignmentInternshipRepository interface {
	FindByID(ctx context.Context, id string) (*models.Internship, error)
	ListByUniversity(ctx context.Context, universityID string) ([]models.Internship, error)
	AppendStudent(ctx context.Context, id, studentID string, guard repository.Guard) (*models.Internship, error)
	RemoveStudent(ctx context.Context, id, studentID string, guard repository.Guard) (*models.Internship, error)
	AppendFaculty(ctx context.Context, id, facultyID string, guard repository.Guard) (*models.Internship, error)
	MarkComplete(ctx context.Context, id string) (*models.Internship, error)
	SetApproval(ctx context.Context, id string, approved bool, guard repository.Guard) (*models.Internship, error)
	MarkStudentsCompleted(ctx context.Context, studentIDs []string) (int64, error)
	ClearStaleCompletions(ctx context.Context, studentIDs []string) (int64, error)
	ReconcileCompletedStudents(ctx context.Context) (int64, error)
}

type assignmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByUniversity(ctx context.Context, universityID, departmentID string) ([]models.Student, error)
}

type assignmentFacultyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

// AssignmentService is the only writer of an internship's assigned sets and of
// students' didInternship flag.
type AssignmentService struct {
	internships assignmentInternshipRepository
	students    assignmentStudentRepository
	faculty     assignmentFacultyRepository
	cache       *CacheService
	metrics     *MetricsService
	policy      config.AssignmentConfig
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService. cache and metrics may be nil.
// policy.EnforceCapacity rejects assignments beyond numberOfStudents and
// policy.LockCompleted freezes an internship once it is complete.
func NewAssignmentService(
	internships assignmentInternshipRepository,
	students assignmentStudentRepository,
	faculty assignmentFacultyRepository,
	cache *CacheService,
	metrics *MetricsService,
	policy config.AssignmentConfig,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		internships: internships,
		students:    students,
		faculty:     faculty,
		cache:       cache,
		metrics:     metrics,
		policy:      policy,
		logger:      logger,
	}
}

func (s *AssignmentService) guard() repository.Guard {
	return repository.Guard{RequireOpen: s.policy.LockCompleted, EnforceCapacity: s.policy.EnforceCapacity}
}

// AssignStudentToInternship adds a student to an internship's assigned set.
// Assigning an already assigned student returns the current state unchanged.
func (s *AssignmentService) AssignStudentToInternship(ctx context.Context, internshipID, studentID string) (*models.Internship, error) {
	if err := requireIDs("internshipId", internshipID, "studentId", studentID); err != nil {
		return nil, err
	}

	internship, err := s.loadInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}

	if internship.HasStudent(studentID) {
		s.metrics.ObserveAssignment(OutcomeNoop)
		return internship, nil
	}
	if err := s.checkOpen(internship); err != nil {
		s.metrics.ObserveAssignment(OutcomeRejected)
		return nil, err
	}
	if err := s.checkCapacity(internship); err != nil {
		s.metrics.ObserveAssignment(OutcomeRejected)
		return nil, err
	}

	updated, err := s.internships.AppendStudent(ctx, internshipID, studentID, s.guard())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to assign student")
		}
		// Lost a race: re-read to find out which precondition no longer holds.
		current, rerr := s.loadInternship(ctx, internshipID)
		if rerr != nil {
			return nil, rerr
		}
		if current.HasStudent(studentID) {
			s.metrics.ObserveAssignment(OutcomeNoop)
			return current, nil
		}
		if err := s.checkOpen(current); err != nil {
			s.metrics.ObserveAssignment(OutcomeRejected)
			return nil, err
		}
		if err := s.checkCapacity(current); err != nil {
			s.metrics.ObserveAssignment(OutcomeRejected)
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to assign student")
	}

	s.metrics.ObserveAssignment(OutcomeAssigned)
	s.logger.Info("student assigned to internship",
		zap.String("internship_id", internshipID),
		zap.String("student_id", studentID),
		zap.Int("assigned", len(updated.AssignedStudents)),
	)
	s.invalidate(ctx, updated.UniversityID)
	return updated, nil
}

// UnassignStudent removes a student from an internship's assigned set. Removing
// a student that is not assigned is a no-op.
func (s *AssignmentService) UnassignStudent(ctx context.Context, internshipID, studentID string) (*models.Internship, error) {
	if err := requireIDs("internshipId", internshipID, "studentId", studentID); err != nil {
		return nil, err
	}

	internship, err := s.loadInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !internship.HasStudent(studentID) {
		if internship.IsComplete {
			if _, err := s.ReleaseStudents(ctx, []string{studentID}); err != nil {
				return nil, err
			}
		}
		return internship, nil
	}
	if err := s.checkOpen(internship); err != nil {
		return nil, err
	}

	updated, err := s.internships.RemoveStudent(ctx, internshipID, studentID, s.guard())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to unassign student")
		}
		current, rerr := s.loadInternship(ctx, internshipID)
		if rerr != nil {
			return nil, rerr
		}
		if !current.HasStudent(studentID) {
			return current, nil
		}
		if err := s.checkOpen(current); err != nil {
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to unassign student")
	}

	s.metrics.ObserveAssignment(OutcomeRemoved)
	s.logger.Info("student unassigned from internship", zap.String("internship_id", internshipID), zap.String("student_id", studentID))
	s.invalidate(ctx, updated.UniversityID)
	if updated.IsComplete {
		if _, err := s.ReleaseStudents(ctx, []string{studentID}); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// ReleaseStudents clears didInternship for students that are no longer in any
// completed internship's assigned set. Called after a student leaves, or an
// internship is removed from, a completed internship.
func (s *AssignmentService) ReleaseStudents(ctx context.Context, studentIDs []string) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	cleared, err := s.internships.ClearStaleCompletions(ctx, studentIDs)
	if err != nil {
		s.logger.Error("clearing didInternship failed",
			zap.Strings("student_ids", studentIDs),
			zap.Error(err),
		)
		return 0, appErrors.Internal(err, "assigned set changed but updating students failed")
	}
	if cleared > 0 {
		s.logger.Info("didInternship cleared", zap.Strings("student_ids", studentIDs), zap.Int64("students", cleared))
	}
	return cleared, nil
}

// AssignFaculty adds a faculty supervisor to an internship. Idempotent.
func (s *AssignmentService) AssignFaculty(ctx context.Context, internshipID, facultyID string) (*models.Internship, error) {
	if err := requireIDs("internshipId", internshipID, "facultyId", facultyID); err != nil {
		return nil, err
	}

	internship, err := s.loadInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if _, err := s.faculty.FindByID(ctx, facultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Internal(err, "failed to load faculty")
	}
	if internship.HasFaculty(facultyID) {
		return internship, nil
	}
	if err := s.checkOpen(internship); err != nil {
		return nil, err
	}

	updated, err := s.internships.AppendFaculty(ctx, internshipID, facultyID, s.guard())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to assign faculty")
		}
		current, rerr := s.loadInternship(ctx, internshipID)
		if rerr != nil {
			return nil, rerr
		}
		if current.HasFaculty(facultyID) {
			return current, nil
		}
		if err := s.checkOpen(current); err != nil {
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to assign faculty")
	}

	s.invalidateInternships(ctx)
	return updated, nil
}

// UnassignedStudents returns the students of a university, optionally narrowed
// to one department, that appear in no internship of that university.
func (s *AssignmentService) UnassignedStudents(ctx context.Context, universityID, departmentID string) ([]models.Student, error) {
	if err := requireIDs("universityId", universityID); err != nil {
		return nil, err
	}

	key := UnassignedCacheKey(universityID, departmentID)
	var cached []models.Student
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	internships, err := s.internships.ListByUniversity(ctx, universityID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list internships")
	}
	assigned := make(map[string]struct{})
	for _, internship := range internships {
		for _, id := range internship.AssignedStudents {
			assigned[id] = struct{}{}
		}
	}

	students, err := s.students.ListByUniversity(ctx, universityID, departmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	result := make([]models.Student, 0, len(students))
	for _, student := range students {
		if _, ok := assigned[student.ID]; !ok {
			result = append(result, student)
		}
	}

	_ = s.cache.Set(ctx, key, result, 0)
	return result, nil
}

// CompleteInternship marks an internship complete and sets didInternship on
// every student in its assigned set as read after the completion write. If the
// propagation fails the internship stays complete; calling again, or running
// ReconcileCompletions, repairs the students.
func (s *AssignmentService) CompleteInternship(ctx context.Context, internshipID string) (*dto.CompletionResult, error) {
	if err := requireIDs("internshipId", internshipID); err != nil {
		return nil, err
	}
	if _, err := s.loadInternship(ctx, internshipID); err != nil {
		return nil, err
	}

	completed, err := s.internships.MarkComplete(ctx, internshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return nil, appErrors.Internal(err, "failed to complete internship")
	}
	defer s.invalidate(ctx, completed.UniversityID)

	studentIDs := []string(completed.AssignedStudents)
	if studentIDs == nil {
		studentIDs = []string{}
	}
	result := &dto.CompletionResult{
		InternshipID:     completed.ID,
		IsComplete:       completed.IsComplete,
		AssignedStudents: studentIDs,
	}
	if len(studentIDs) == 0 {
		s.metrics.ObserveCompletion(0, nil)
		s.logger.Info("internship completed", zap.String("internship_id", internshipID), zap.Int("students", 0))
		return result, nil
	}

	updated, err := s.internships.MarkStudentsCompleted(ctx, studentIDs)
	s.metrics.ObserveCompletion(updated, err)
	if err != nil {
		s.logger.Error("internship completed but student propagation failed",
			zap.String("internship_id", internshipID),
			zap.Int("students", len(studentIDs)),
			zap.Error(err),
		)
		return nil, appErrors.Internal(err, "internship marked complete but updating students failed")
	}

	result.StudentsUpdated = updated
	s.logger.Info("internship completed",
		zap.String("internship_id", internshipID),
		zap.Int("students", len(studentIDs)),
		zap.Int64("students_updated", updated),
	)
	return result, nil
}

// ApproveInternship sets the approval flag.
func (s *AssignmentService) ApproveInternship(ctx context.Context, internshipID string, approve bool) (*models.Internship, error) {
	if err := requireIDs("id", internshipID); err != nil {
		return nil, err
	}
	internship, err := s.loadInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOpen(internship); err != nil {
		return nil, err
	}

	updated, err := s.internships.SetApproval(ctx, internshipID, approve, s.guard())
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to update internship approval")
		}
		current, rerr := s.loadInternship(ctx, internshipID)
		if rerr != nil {
			return nil, rerr
		}
		if err := s.checkOpen(current); err != nil {
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to update internship approval")
	}

	s.invalidateInternships(ctx)
	return updated, nil
}

// ReconcileCompletions sets didInternship for every student assigned to a
// completed internship and clears it for everyone else. Safe to run repeatedly.
func (s *AssignmentService) ReconcileCompletions(ctx context.Context) (*dto.ReconcileResult, error) {
	repaired, err := s.internships.ReconcileCompletedStudents(ctx)
	s.metrics.ObserveReconcile(repaired, err)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to reconcile completed internships")
	}
	if repaired > 0 {
		s.logger.Warn("reconciliation repaired students", zap.Int64("students", repaired))
	}
	return &dto.ReconcileResult{StudentsRepaired: repaired, RanAt: time.Now().UTC()}, nil
}

func (s *AssignmentService) loadInternship(ctx context.Context, id string) (*models.Internship, error) {
	internship, err := s.internships.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return nil, appErrors.Internal(err, "failed to load internship")
	}
	return internship, nil
}

func (s *AssignmentService) checkOpen(internship *models.Internship) error {
	if s.policy.LockCompleted && internship.IsComplete {
		return appErrors.Clone(appErrors.ErrFinalized, "internship is complete")
	}
	return nil
}

func (s *AssignmentService) checkCapacity(internship *models.Internship) error {
	if s.policy.EnforceCapacity && len(internship.AssignedStudents) >= internship.NumberOfStudents {
		return appErrors.Clone(appErrors.ErrCapacityReached,
			fmt.Sprintf("internship already has %d of %d students", len(internship.AssignedStudents), internship.NumberOfStudents))
	}
	return nil
}

func (s *AssignmentService) invalidate(ctx context.Context, universityID string) {
	_ = s.cache.InvalidateUnassigned(ctx, universityID)
	s.invalidateInternships(ctx)
}

func (s *AssignmentService) invalidateInternships(ctx context.Context) {
	_ = s.cache.InvalidateInternships(ctx)
}

// requireIDs takes name/value pairs and reports every empty value by name.
func requireIDs(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if trimmed(pairs[i+1]) == "" {
			missing = append(missing, pairs[i]+" is required")
		}
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, strings.Join(missing, "; "))
	}
	return nil
}
