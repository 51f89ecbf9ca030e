package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/repository"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
)

type ledgerStore struct {
	ledgers map[string]models.Finance
	entries map[string][]models.FinanceTransaction
}

func (s *ledgerStore) Mutate(ctx context.Context, studentID, academicYear string, create bool, fn repository.LedgerMutation) (*models.Finance, error) {
	key := studentID + "|" + academicYear
	working, ok := s.ledgers[key]
	if !ok {
		if !create {
			return nil, sql.ErrNoRows
		}
		working = models.Finance{ID: "fin-" + studentID, StudentID: studentID, AcademicYear: academicYear}
	}
	entries, err := fn(ctx, nil, &working)
	if err != nil {
		return nil, err
	}
	s.ledgers[key] = working
	s.entries[working.ID] = append(s.entries[working.ID], entries...)
	return &working, nil
}

func (s *ledgerStore) Get(ctx context.Context, studentID, academicYear string) (*models.Finance, error) {
	ledger, ok := s.ledgers[studentID+"|"+academicYear]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &ledger, nil
}

func (s *ledgerStore) List(ctx context.Context, filter models.FinanceFilter) ([]models.Finance, int, error) {
	var out []models.Finance
	for _, ledger := range s.ledgers {
		out = append(out, ledger)
	}
	return out, len(out), nil
}

func (s *ledgerStore) ListTransactions(ctx context.Context, financeID string) ([]models.FinanceTransaction, error) {
	return s.entries[financeID], nil
}

func newFinanceHandlerFixture() (*FinanceHandler, *ledgerStore) {
	store := &ledgerStore{ledgers: map[string]models.Finance{}, entries: map[string][]models.FinanceTransaction{}}
	svc := service.NewFinanceService(store, nil, nil, nil, nil, nil, nil)
	return NewFinanceHandler(svc), store
}

func TestFinanceHandlerPaymentWithoutLedger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newFinanceHandlerFixture()

	c, w := apiContext(http.MethodPost, "/finance/payments", `{"studentId":"stu-1","academicYear":"2024-25","amount":100}`, models.RoleAdmin)
	handler.RecordPayment(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
	assert.Empty(t, store.ledgers)
}

func TestFinanceHandlerRejectsOverpayment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newFinanceHandlerFixture()

	c, w := apiContext(http.MethodPost, "/finance/fees", `{"studentId":"stu-1","academicYear":"2024-25","totalFee":1000}`, models.RoleAdmin)
	handler.AssignFee(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = apiContext(http.MethodPost, "/finance/payments", `{"studentId":"stu-1","academicYear":"2024-25","amount":1500}`, models.RoleAdmin)
	handler.RecordPayment(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	assert.Contains(t, w.Body.String(), "exceeds pending amount 1000")
	assert.Equal(t, int64(0), store.ledgers["stu-1|2024-25"].PaidAmount)

	c, w = apiContext(http.MethodPost, "/finance/payments", `{"studentId":"stu-1","academicYear":"2024-25","amount":400}`, models.RoleAdmin)
	handler.RecordPayment(c)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data models.Finance `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(600), body.Data.PendingAmount)
}
