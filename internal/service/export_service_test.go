package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
	"github.com/noah-isme/sma-schedule-engine/pkg/export"
)

type fakeCatalogRepo struct {
	index *models.CatalogIndex
	err   error
	refs  []models.CatalogRefs
}

func (f *fakeCatalogRepo) Lookup(_ context.Context, refs models.CatalogRefs) (*models.CatalogIndex, error) {
	f.refs = append(f.refs, refs)
	if f.err != nil {
		return nil, f.err
	}
	return f.index, nil
}

type capturePDF struct {
	data    export.Dataset
	title   string
	groupBy string
}

func (c *capturePDF) Render(data export.Dataset, title, groupBy string) ([]byte, error) {
	c.data = data
	c.title = title
	c.groupBy = groupBy
	return []byte("%PDF-1.3"), nil
}

func newExportFixture(entries ...models.ScheduleEntry) (*ExportService, *fakeScheduleRepo, *capturePDF) {
	repo := newFakeScheduleRepo(entries...)
	schedules := NewScheduleService(repo, nil, nil, nil)
	index := models.NewCatalogIndex()
	index.Rooms["R1"] = models.CatalogRoom{ID: "R1", Name: "Lab 1"}
	catalog := NewCatalogService(&fakeCatalogRepo{index: index}, nil)
	pdf := &capturePDF{}
	svc := NewExportService(schedules, schedules, catalog, nil, nil, pdf)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, pdf
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	format, err = ParseExportFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)
}

func TestExportServiceCSVPagesThroughEverything(t *testing.T) {
	var entries []models.ScheduleEntry
	for i := 0; i < 130; i++ {
		entries = append(entries, scheduled(strings.Repeat("x", i%3+1)+string(rune('A'+i%26))+string(rune('a'+i/26)), "P1", "", models.Weekday(i%7+1), "08:00", "09:00"))
	}
	svc, repo, _ := newExportFixture(entries...)

	result, err := svc.Export(context.Background(), models.ScheduleFilter{}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 130, result.Rows)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "schedules_20240301_120000.csv", result.Filename)
	assert.Equal(t, models.MaxSchedulePageSize, repo.lastList.PageSize)

	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	assert.Len(t, lines, 131)
	assert.True(t, strings.HasPrefix(lines[0], "id,subject_id,instructor_id,room_id,weekday"))
	assert.Contains(t, lines[1], "Monday")
}

func TestExportServicePDFGroupsByWeekday(t *testing.T) {
	svc, _, pdf := newExportFixture(
		scheduled("b", "P1", "R1", models.Wednesday, "09:00", "10:00"),
		scheduled("a", "P2", "", models.Monday, "10:00", "11:00"),
	)

	result, err := svc.Export(context.Background(), models.ScheduleFilter{AcademicYear: 2024, AcademicPeriod: 1}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "Weekday", pdf.groupBy)
	assert.Equal(t, "Class schedule 2024/1", pdf.title)
	require.Len(t, pdf.data.Rows, 2)
	assert.Equal(t, "Monday", pdf.data.Rows[0]["Weekday"])
	assert.Equal(t, "-", pdf.data.Rows[0]["Room"])
	assert.Equal(t, "Lab 1", pdf.data.Rows[1]["Room"])
}

func TestExportServiceImport(t *testing.T) {
	svc, repo, _ := newExportFixture()
	doc := "subject_id,instructor_id,room_id,weekday,start_time,end_time,academic_year,academic_period,notes\n" +
		"math,P1,R1,Tuesday,14:00,16:00,2024,1,\n" +
		"bio,P2,,3,08:00,09:30,2024,1,field trip\n"

	created, err := svc.Import(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Len(t, repo.entries, 2)
	assert.Nil(t, created[1].RoomID)
	assert.Equal(t, models.Wednesday, created[1].Weekday)
}

func TestExportServiceImportRejectsWholeDocument(t *testing.T) {
	svc, repo, _ := newExportFixture()
	doc := "subject_id,instructor_id,room_id,weekday,start_time,end_time,academic_year,academic_period\n" +
		"math,P1,R1,Tuesday,14:00,16:00,2024,1\n" +
		"bio,P2,,Tuesday,16:00,15:00,2024,1\n"

	_, err := svc.Import(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTimeSlot)
	assert.Empty(t, repo.entries)

	doc = "subject_id,instructor_id,room_id,weekday,start_time,end_time,academic_year,academic_period\n" +
		"math,P1,R1,Someday,14:00,16:00,2024,1\n"
	_, err = svc.Import(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "row 2")

	_, err = svc.Import(context.Background(), strings.NewReader("subject_id,instructor_id\n"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCatalogServiceResolve(t *testing.T) {
	index := models.NewCatalogIndex()
	index.Subjects["math"] = models.CatalogSubject{ID: "math", Name: "Mathematics"}
	repo := &fakeCatalogRepo{index: index}
	svc := NewCatalogService(repo, nil)

	entry := scheduled("a", "P1", "R1", models.Monday, "08:00", "09:00")
	entry.SubjectID = "math"
	resolved := svc.Resolve(context.Background(), entry, entry)
	assert.Equal(t, "Mathematics", resolved.Subjects["math"].Name)
	require.Len(t, repo.refs, 1)
	assert.Equal(t, []string{"math"}, repo.refs[0].SubjectIDs)
	assert.Equal(t, []string{"R1"}, repo.refs[0].RoomIDs)

	repo.err = errors.New("catalog offline")
	fallback := svc.Resolve(context.Background(), entry)
	require.NotNil(t, fallback)
	assert.Empty(t, fallback.Subjects)

	var nilSvc *CatalogService
	assert.NotNil(t, nilSvc.Resolve(context.Background(), entry))

	_ = svc.Resolve(context.Background())
	assert.Len(t, repo.refs, 2)
}
