package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	applog "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/logger"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// publish hands the entity returned to the caller to the event sink. Delivery
// failures never fail the request.
func publish(ctx context.Context, sink realtime.Sink, logger *zap.Logger, name string, payload interface{}) {
	if sink == nil {
		return
	}
	if err := sink.Publish(ctx, realtime.NewEvent(name, payload)); err != nil {
		applog.FromContext(ctx, logger).Warn("failed to publish event", zap.String("event", name), zap.Error(err))
	}
}

func recordAudit(ctx context.Context, writer auditWriter, logger *zap.Logger, actor models.Actor, action, resource, resourceID string, oldValue, newValue interface{}) {
	if writer == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
	}
	if actor.UserID != "" {
		userID := actor.UserID
		entry.UserID = &userID
	}
	if oldValue != nil {
		entry.OldValues, _ = json.Marshal(oldValue)
	}
	if newValue != nil {
		entry.NewValues, _ = json.Marshal(newValue)
	}
	if err := writer.CreateAuditLog(ctx, entry); err != nil {
		applog.FromContext(ctx, logger).Warn("failed to record audit log", zap.String("resource", resource), zap.String("resource_id", resourceID), zap.Error(err))
	}
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	return nil
}

func requireStaff(actor models.Actor) error {
	if !actor.IsStaff() {
		return appErrors.Clone(appErrors.ErrForbidden, "staff role required")
	}
	return nil
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// lookupError maps repository read failures to not-found or internal errors.
func lookupError(err error, notFound, failed string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, failed)
}

// passThrough keeps typed errors raised inside callbacks and wraps anything else.
func passThrough(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return internalError(err, message)
}

// errorMessage is the client-facing text for a per-item bulk failure.
func errorMessage(err error) string {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil && appErr.Status >= 500 {
		return appErr.Message + ": " + appErr.Err.Error()
	}
	return appErr.Message
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// normalizePage mirrors the repository paging defaults for response metadata.
func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
