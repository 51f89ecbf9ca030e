package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/export"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/storage"
)

// Download formats accepted by attendance exports.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var attendanceHeaders = []string{"Date", "Name", "Class", "Section", "Status", "Remarks"}

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderDocument(doc export.Document) ([]byte, error)
}

// DocumentConfig tunes document storage and download links.
type DocumentConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// Download is a rendered file returned inline to the caller.
type Download struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// DocumentService renders attendance sheets and hall tickets. Hall tickets are
// stored and served through signed, expiring download links.
type DocumentService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     DocumentConfig
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(store fileStorage, signer *storage.SignedURLSigner, cfg DocumentConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &DocumentService{storage: store, csv: csv, pdf: pdf, signer: signer, logger: logger, cfg: cfg}
}

// AttendanceSheet renders records as CSV (with a UTF-8 BOM) or PDF.
func (s *DocumentService) AttendanceSheet(records []models.AttendanceRecord, format string) (*Download, error) {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"Date":    r.Date.Format("2006-01-02"),
			"Name":    r.StudentName,
			"Class":   r.ClassName,
			"Section": r.Section,
			"Status":  string(r.Status),
			"Remarks": r.Remarks,
		})
	}
	dataset := export.Dataset{Headers: attendanceHeaders, Rows: rows}
	stamp := time.Now().UTC().Format("20060102_150405")

	switch strings.ToLower(format) {
	case "", FormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, err
		}
		return &Download{Filename: "attendance_" + stamp + ".csv", ContentType: "text/csv; charset=utf-8", Payload: payload}, nil
	case FormatPDF:
		payload, err := s.pdf.Render(dataset, "Attendance Report")
		if err != nil {
			return nil, err
		}
		return &Download{Filename: "attendance_" + stamp + ".pdf", ContentType: "application/pdf", Payload: payload}, nil
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// HallTicket renders and stores the admission document for one student and exam.
func (s *DocumentService) HallTicket(ctx context.Context, exam *models.Exam, student *models.Student) (*models.HallTicket, error) {
	doc := export.Document{
		Title:    "Hall Ticket",
		Subtitle: exam.ExamName,
		Fields: []export.Field{
			{Label: "Student", Value: student.FullName},
			{Label: "Roll Number", Value: student.RollNumber},
			{Label: "Class", Value: strings.TrimSpace(student.ClassName + " " + student.Section)},
			{Label: "Exam Type", Value: exam.ExamType},
			{Label: "Subject", Value: exam.Subject},
			{Label: "Date", Value: exam.Date.Format("02 Jan 2006")},
			{Label: "Time", Value: exam.StartTime + " - " + exam.EndTime},
			{Label: "Hall", Value: exam.Hall},
		},
		Notes: []string{
			"Carry this hall ticket to the examination hall.",
			"Report at least 15 minutes before the start time.",
		},
	}
	payload, err := s.pdf.RenderDocument(doc)
	if err != nil {
		return nil, err
	}

	relPath := fmt.Sprintf("hall-tickets/%s/%s.pdf", sanitizeFilename(exam.ID), sanitizeFilename(student.ID))
	if _, err := s.storage.Save(relPath, payload); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(uuid.NewString(), relPath)
	if err != nil {
		return nil, err
	}
	return &models.HallTicket{
		ExamID:      exam.ID,
		StudentID:   student.ID,
		DownloadURL: s.downloadURL(token),
		ExpiresAt:   expiresAt,
	}, nil
}

// ParseToken validates a download token and returns the stored path.
func (s *DocumentService) ParseToken(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	return relPath, err
}

// Open returns a handle to the stored file.
func (s *DocumentService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl, or the configured TTL when ttl <= 0.
func (s *DocumentService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	deleted, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired documents removed", zap.Int("count", len(deleted)))
	}
	return deleted, nil
}

func (s *DocumentService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/downloads/%s", prefix, token)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
