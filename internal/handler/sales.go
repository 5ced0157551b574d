package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/revenue"
)

type saleRequest struct {
	Product  string           `json:"product" validate:"required"`
	Customer string           `json:"customer"`
	Amount   decimal.Decimal  `json:"amount"`
	Date     *time.Time       `json:"date"`
	Status   model.SaleStatus `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	BatchID  string           `json:"batch" validate:"omitempty,uuid"`
}

// handleCreateSale records a sale for the caller. The sale is attributed to
// the named batch, or to the first of the student's batches.
func (h *Handler) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, r, model.NewValidationError("amount", "must be positive"))
		return
	}
	ctx := r.Context()
	studentID := caller(r).SubjectID

	batches, err := h.store.ListBatchesByStudent(ctx, studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	batchID := req.BatchID
	if batchID != "" {
		if !slices.ContainsFunc(batches, func(b model.Batch) bool { return b.ID == batchID }) {
			writeError(w, r, model.NewValidationError("batch", "student is not enrolled in this batch"))
			return
		}
	} else if len(batches) > 0 {
		batchID = batches[0].ID
	}

	sale := model.Sale{
		StudentID: studentID,
		BatchID:   batchID,
		Product:   req.Product,
		Customer:  req.Customer,
		Amount:    req.Amount,
		Status:    req.Status,
	}
	if req.Date != nil {
		sale.Date = *req.Date
	}
	sale, err = h.store.CreateSale(ctx, sale)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (h *Handler) handleMySales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.store.ListSalesByStudent(r.Context(), caller(r).SubjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sales == nil {
		sales = []model.Sale{}
	}
	writeJSON(w, http.StatusOK, sales)
}

type salesStats struct {
	TotalSales   int              `json:"totalSales"`
	TotalRevenue decimal.Decimal  `json:"totalRevenue"`
	Earnings     decimal.Decimal  `json:"earnings"`
	Daily        []revenue.Bucket `json:"daily"`
	Monthly      []revenue.Bucket `json:"monthly"`
}

// handleSalesStats returns the caller's completed sales for the last 30
// days and per month of the current year.
func (h *Handler) handleSalesStats(w http.ResponseWriter, r *http.Request) {
	sales, err := h.store.ListSalesByStudent(r.Context(), caller(r).SubjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	now := h.now()
	one := decimal.NewFromInt(1)
	stats := salesStats{
		TotalRevenue: revenue.Sum(sales),
		Daily:        revenue.Daily(sales, 30, now, one),
		Monthly:      revenue.Monthly(sales, now.Year(), now.Location(), one),
	}
	for _, s := range sales {
		if s.Completed() {
			stats.TotalSales++
		}
	}
	stats.Earnings = revenue.Split(stats.TotalRevenue).Student
	writeJSON(w, http.StatusOK, stats)
}

type saleStatusRequest struct {
	Status model.SaleStatus `json:"status" validate:"required,oneof=pending completed cancelled"`
}

func (h *Handler) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req saleStatusRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sale, err := h.store.UpdateSaleStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}
