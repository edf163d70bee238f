package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/models"
	appErrors "github.com/noah-isme/internship-portal-api/pkg/errors"
	"github.com/noah-isme/internship-portal-api/pkg/export"
)

type rosterStudentRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

// RosterFile is a rendered roster ready to be served.
type RosterFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

var rosterHeaders = []string{"#", "Registration No", "Name", "Email", "Department", "Batch", "Section", "GPA", "Internship Done"}

// ExportService renders internship rosters.
type ExportService struct {
	internships internshipLookup
	students    rosterStudentRepository
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(internships internshipLookup, students rosterStudentRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{internships: internships, students: students, logger: logger}
}

// Roster renders the assigned students of an internship in assignment order.
// IDs that no longer resolve to a student are listed as missing.
func (s *ExportService) Roster(ctx context.Context, internshipID, format string) (*RosterFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}
	internship, err := s.internships.FindByID(ctx, internshipID)
	if err != nil {
		return nil, loadError(err, "internship")
	}
	students, err := s.students.ListByIDs(ctx, internship.AssignedStudents)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load roster students")
	}
	byID := make(map[string]models.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Roster: %s", internship.Title),
		Headers: rosterHeaders,
		Rows:    make([][]string, 0, len(internship.AssignedStudents)),
	}
	for i, id := range internship.AssignedStudents {
		st, ok := byID[id]
		if !ok {
			data.Rows = append(data.Rows, []string{strconv.Itoa(i + 1), "", "(missing student " + id + ")"})
			continue
		}
		gpa := ""
		if st.GPA != nil {
			gpa = strconv.FormatFloat(*st.GPA, 'f', 2, 64)
		}
		data.Rows = append(data.Rows, []string{
			strconv.Itoa(i + 1),
			st.RegistrationNumber,
			st.FullName(),
			st.Email,
			st.DepartmentID,
			st.Batch,
			st.Section,
			gpa,
			yesNo(st.DidInternship),
		})
	}

	content, err := export.RendererFor(f).Render(data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render roster")
	}
	s.logger.Debug("roster rendered", zap.String("internship_id", internshipID), zap.String("format", string(f)), zap.Int("rows", len(data.Rows)))
	return &RosterFile{
		Filename:    fmt.Sprintf("roster-%s-%s.%s", slug(internship.Title), time.Now().UTC().Format("20060102"), f),
		ContentType: f.ContentType(),
		Data:        content,
	}, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "internship"
	}
	return out
}
