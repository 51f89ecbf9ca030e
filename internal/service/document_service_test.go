package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/storage"
)

func newDocumentServiceForTest(t *testing.T) *DocumentService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewDocumentService(store, signer, DocumentConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, zap.NewNop(), nil, nil)
}

func TestDocumentServiceAttendanceCSV(t *testing.T) {
	svc := newDocumentServiceForTest(t)
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	download, err := svc.AttendanceSheet([]models.AttendanceRecord{
		{Date: day, StudentName: "Asha", ClassName: "10", Section: "A", Status: models.AttendanceStatusAbsent, Remarks: models.DefaultAbsentRemark},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", download.ContentType)
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))
	require.True(t, bytes.HasPrefix(download.Payload, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(download.Payload), "Date,Name,Class,Section,Status,Remarks\n2024-06-03,Asha,10,A,absent,Not marked - Default absent\n")
}

func TestDocumentServiceRejectsUnknownFormat(t *testing.T) {
	svc := newDocumentServiceForTest(t)
	_, err := svc.AttendanceSheet(nil, "xlsx")
	assert.Error(t, err)
}

func TestDocumentServiceHallTicketRoundTrip(t *testing.T) {
	svc := newDocumentServiceForTest(t)
	exam := &models.Exam{ID: "exam-1", ExamName: "Midterm", Subject: "Maths", Date: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), StartTime: "10:00", EndTime: "11:00", Hall: "H1"}
	student := &models.Student{ID: "stu-1", FullName: "Asha", ClassName: "10", Section: "A", RollNumber: "12"}

	ticket, err := svc.HallTicket(context.Background(), exam, student)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ticket.DownloadURL, "/api/v1/downloads/"))

	token := strings.TrimPrefix(ticket.DownloadURL, "/api/v1/downloads/")
	relPath, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "hall-tickets/exam-1/stu-1.pdf", relPath)

	file, err := svc.Open(relPath)
	require.NoError(t, err)
	defer file.Close()
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	_, err = svc.ParseToken("garbage")
	assert.Error(t, err)
}
