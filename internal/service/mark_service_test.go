package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
)

type markRepoStub struct {
	marks   map[string]models.Mark
	failFor string
}

func (r *markRepoStub) Upsert(ctx context.Context, mark *models.Mark) (*models.Mark, error) {
	if mark.StudentID == r.failFor {
		return nil, errors.New("deadlock detected")
	}
	key := mark.ExamID + "|" + mark.StudentID
	if existing, ok := r.marks[key]; ok {
		mark.ID = existing.ID
	} else {
		mark.ID = "mark-" + mark.StudentID
	}
	r.marks[key] = *mark
	out := *mark
	return &out, nil
}

func (r *markRepoStub) ListByExam(ctx context.Context, examID string) ([]models.Mark, error) {
	var out []models.Mark
	for _, m := range r.marks {
		if m.ExamID == examID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *markRepoStub) ListByStudent(ctx context.Context, studentID string) ([]models.Mark, error) {
	var out []models.Mark
	for _, m := range r.marks {
		if m.StudentID == studentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newMarkFixture() (*MarkService, *markRepoStub, *recordingEvents) {
	exams := newExamRepoStub()
	exams.exams["exam-1"] = models.Exam{ID: "exam-1", TotalMarks: 80, Status: models.ExamStatusScheduled}
	exams.exams["exam-2"] = models.Exam{ID: "exam-2", TotalMarks: 100, Status: models.ExamStatusCancelled}
	repo := &markRepoStub{marks: map[string]models.Mark{}}
	events := &recordingEvents{}
	return NewMarkService(repo, exams, events, NewMetricsService(), nil, nil), repo, events
}

func TestGradeFor(t *testing.T) {
	cases := map[float64]string{100: "A+", 90: "A+", 89.99: "A", 80: "A", 70: "B", 60: "C", 50: "D", 49.5: "F", 0: "F"}
	for percent, grade := range cases {
		assert.Equal(t, grade, GradeFor(percent), "percent %v", percent)
	}
}

func TestMarkRecordUpsertsWithGrade(t *testing.T) {
	svc, repo, events := newMarkFixture()
	ctx := context.Background()

	mark, err := svc.Record(ctx, staffActor, dto.MarkRequest{ExamID: "exam-1", StudentID: "stu-1", MarksObtained: 72})
	require.NoError(t, err)
	assert.Equal(t, "A+", mark.Grade)

	mark, err = svc.Record(ctx, staffActor, dto.MarkRequest{ExamID: "exam-1", StudentID: "stu-1", MarksObtained: 40})
	require.NoError(t, err)
	assert.Equal(t, "D", mark.Grade)
	assert.Len(t, repo.marks, 1)
	assert.Equal(t, []string{"marksUpdate", "marksUpdate"}, events.names())
}

func TestMarkRecordGuards(t *testing.T) {
	svc, _, _ := newMarkFixture()
	ctx := context.Background()

	_, err := svc.Record(ctx, staffActor, dto.MarkRequest{ExamID: "exam-1", StudentID: "stu-1", MarksObtained: 81})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = svc.Record(ctx, staffActor, dto.MarkRequest{ExamID: "exam-2", StudentID: "stu-1", MarksObtained: 10})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = svc.Record(ctx, staffActor, dto.MarkRequest{ExamID: "missing", StudentID: "stu-1", MarksObtained: 10})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	_, err = svc.Record(ctx, studentActor, dto.MarkRequest{ExamID: "exam-1", StudentID: "stu-1", MarksObtained: 10})
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestMarkBulkRecordReportsPerItem(t *testing.T) {
	svc, repo, events := newMarkFixture()
	repo.failFor = "stu-3"

	results, err := svc.BulkRecord(context.Background(), staffActor, dto.BulkMarkRequest{
		ExamID: "exam-1",
		Items: []dto.BulkMarkItem{
			{StudentID: "stu-1", MarksObtained: 60},
			{StudentID: "stu-2", MarksObtained: 95},
			{StudentID: "stu-3", MarksObtained: 30},
			{StudentID: "", MarksObtained: 10},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "deadlock detected")
	assert.False(t, results[3].Success)
	assert.Len(t, repo.marks, 1)
	assert.Equal(t, []string{"marksUpdate"}, events.names())
}

func TestMarkListByStudentScope(t *testing.T) {
	svc, _, _ := newMarkFixture()
	ctx := context.Background()
	_, err := svc.Record(ctx, staffActor, dto.MarkRequest{ExamID: "exam-1", StudentID: "stu-1", MarksObtained: 50})
	require.NoError(t, err)

	marks, err := svc.ListByStudent(ctx, studentActor, "stu-1")
	require.NoError(t, err)
	assert.Len(t, marks, 1)

	_, err = svc.ListByStudent(ctx, studentActor, "stu-2")
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}
