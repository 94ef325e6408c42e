package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Benediks/Sidaya/internal/audit"
	"github.com/Benediks/Sidaya/internal/logger"
	"github.com/Benediks/Sidaya/internal/metrics"
	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Row is one proposed sale as parsed from an upload or a JSON batch.
type Row struct {
	TransactionID string `json:"id"`
	Date          string `json:"date"`
	MenuName      string `json:"menu"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     *int64 `json:"unit_price,omitempty"`
	Total         *int64 `json:"total,omitempty"`
	Note          string `json:"note,omitempty"`
}

// Batch is one ingestion attempt.
type Batch struct {
	Actor    audit.Actor
	FileName string
	Rows     []Row
}

type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type RowResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Menu    string `json:"menu"`
	Message string `json:"message"`
}

// Report is returned for every batch that reached the end without an
// unexpected failure, even when all rows were rejected.
type Report struct {
	Summary Summary     `json:"summary"`
	Results []RowResult `json:"results"`
}

func (r *Report) add(res RowResult) {
	if res.Success {
		r.Summary.Success++
	} else {
		r.Summary.Failed++
	}
	r.Results = append(r.Results, res)
}

// RejectReason classifies a rejected row.
type RejectReason string

const (
	RejectMissingFields     RejectReason = "missing_fields"
	RejectInvalidDate       RejectReason = "invalid_date"
	RejectMenuNotFound      RejectReason = "menu_not_found"
	RejectAmbiguousMenu     RejectReason = "ambiguous_menu"
	RejectDuplicateID       RejectReason = "duplicate_id"
	RejectInsufficientStock RejectReason = "insufficient_stock"
)

// outcome is the result of evaluating or committing one row.
type outcome interface {
	isOutcome()
}

// Approved rows passed validation and may be committed.
type Approved struct {
	Menu models.MenuItem
	Date time.Time
}

// Accepted rows were written and their stock deducted.
type Accepted struct {
	Menu        models.MenuItem
	Transaction models.Transaction
}

type Rejected struct {
	Reason  RejectReason
	Message string
}

func (Approved) isOutcome() {}
func (Accepted) isOutcome() {}
func (Rejected) isOutcome() {}

// ledgerView is the read side evaluate needs. The gorm implementation reads
// through the batch transaction so earlier rows' deductions are visible.
type ledgerView interface {
	MenusByName(name string) ([]models.MenuItem, error)
	Available(menuID string) (int64, error)
	TransactionExists(id string) (bool, error)
}

type txView struct {
	tx *gorm.DB
}

func (v txView) MenusByName(name string) ([]models.MenuItem, error) {
	var menus []models.MenuItem
	err := v.tx.Where("name_key = ?", models.MenuNameKey(name)).Limit(2).Find(&menus).Error
	return menus, err
}

func (v txView) Available(menuID string) (int64, error) {
	return availableIn(v.tx, menuID)
}

func (v txView) TransactionExists(id string) (bool, error) {
	var count int64
	err := v.tx.Model(&models.Transaction{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// evaluate runs the row checks in order and stops at the first failure:
// required fields, date, menu lookup, id uniqueness, availability.
// seen holds ids committed earlier in the batch. A non-nil error means
// the view failed, not that the row is bad.
func evaluate(row Row, view ledgerView, seen map[string]struct{}) (outcome, error) {
	name := strings.TrimSpace(row.MenuName)
	date := strings.TrimSpace(row.Date)
	if name == "" || date == "" || row.Quantity <= 0 {
		return Rejected{
			Reason:  RejectMissingFields,
			Message: "Missing required fields (Tanggal, Nama_Menu, or Jumlah)",
		}, nil
	}

	when, err := util.ParseDate(date)
	if err != nil {
		return Rejected{
			Reason:  RejectInvalidDate,
			Message: fmt.Sprintf("Invalid date '%s'", date),
		}, nil
	}

	menus, err := view.MenusByName(name)
	if err != nil {
		return nil, fmt.Errorf("look up menu %q: %w", name, err)
	}
	switch len(menus) {
	case 0:
		return Rejected{
			Reason:  RejectMenuNotFound,
			Message: fmt.Sprintf("Menu '%s' not found in database", name),
		}, nil
	case 1:
	default:
		return Rejected{
			Reason:  RejectAmbiguousMenu,
			Message: fmt.Sprintf("Menu name '%s' matches more than one menu", name),
		}, nil
	}
	menu := menus[0]

	if id := strings.TrimSpace(row.TransactionID); id != "" {
		_, dup := seen[id]
		if !dup {
			exists, err := view.TransactionExists(id)
			if err != nil {
				return nil, fmt.Errorf("check transaction id %q: %w", id, err)
			}
			dup = exists
		}
		if dup {
			return Rejected{
				Reason:  RejectDuplicateID,
				Message: fmt.Sprintf("Transaction ID '%s' already exists", id),
			}, nil
		}
	}

	avail, err := view.Available(menu.ID)
	if err != nil {
		return nil, fmt.Errorf("availability of menu %s: %w", menu.ID, err)
	}
	if avail < row.Quantity {
		return Rejected{
			Reason:  RejectInsufficientStock,
			Message: fmt.Sprintf("Insufficient stock. Available: %d, Required: %d", avail, row.Quantity),
		}, nil
	}

	return Approved{Menu: menu, Date: when}, nil
}

// Engine ingests sales batches against stock.
type Engine struct {
	db     *gorm.DB
	sink   audit.Sink
	logger *zap.Logger
	newID  func() string
}

func NewEngine(db *gorm.DB, sink audit.Sink, log *zap.Logger) *Engine {
	return &Engine{
		db:     db,
		sink:   sink,
		logger: logger.Named(log, "ingest"),
		newID:  func() string { return util.NewID("TRX") },
	}
}

// Ingest validates and applies b.Rows in order inside one transaction.
// Rejected rows are reported and skipped; any other error rolls the whole
// batch back and is returned instead of a report. Exactly one audit entry
// is written per call, after the transaction has finished.
func (e *Engine) Ingest(ctx context.Context, b Batch) (*Report, error) {
	if len(b.Rows) == 0 {
		e.record(ctx, audit.Entry{
			Actor:       b.Actor,
			Type:        audit.ActivityUpload,
			Status:      audit.StatusFailed,
			FileName:    b.FileName,
			ErrorDetail: "File is empty or invalid format",
		})
		metrics.IngestBatches.WithLabelValues(audit.StatusFailed).Inc()
		return nil, ErrEmptyBatch
	}

	report := &Report{
		Summary: Summary{Total: len(b.Rows)},
		Results: make([]RowResult, 0, len(b.Rows)),
	}

	err := inTx(ctx, e.db, func(tx *gorm.DB) error {
		view := txView{tx: tx}
		seen := make(map[string]struct{}, len(b.Rows))

		for i, row := range b.Rows {
			out, err := evaluate(row, view, seen)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}

			if approved, ok := out.(Approved); ok {
				out, err = e.commit(tx, row, approved, b.Actor.UserID)
				if err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
			}

			switch o := out.(type) {
			case Accepted:
				seen[o.Transaction.ID] = struct{}{}
				report.add(RowResult{
					ID:      o.Transaction.ID,
					Success: true,
					Menu:    o.Menu.Name,
					Message: fmt.Sprintf("Successfully processed. Stock deducted: %d units", o.Transaction.Quantity),
				})
			case Rejected:
				report.add(RowResult{
					ID:      rowID(row),
					Success: false,
					Menu:    row.MenuName,
					Message: o.Message,
				})
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Error("ingestion rolled back", zap.String("file", b.FileName), zap.Error(err))
		e.record(ctx, audit.Entry{
			Actor:       b.Actor,
			Type:        audit.ActivityUpload,
			Status:      audit.StatusFailed,
			FileName:    b.FileName,
			Processed:   len(b.Rows),
			Failed:      len(b.Rows),
			ErrorDetail: err.Error(),
		})
		metrics.IngestBatches.WithLabelValues("ERROR").Inc()
		return nil, fmt.Errorf("ingest batch: %w", err)
	}

	status := audit.StatusFailed
	if report.Summary.Success > 0 {
		status = audit.StatusSuccess
	}
	entry := audit.Entry{
		Actor:     b.Actor,
		Type:      audit.ActivityUpload,
		Status:    status,
		FileName:  b.FileName,
		Processed: report.Summary.Total,
		Succeeded: report.Summary.Success,
		Failed:    report.Summary.Failed,
		Details:   report.Summary,
	}
	if report.Summary.Failed > 0 {
		entry.ErrorDetail = fmt.Sprintf("%d transactions failed", report.Summary.Failed)
	}
	e.record(ctx, entry)

	metrics.IngestBatches.WithLabelValues(status).Inc()
	metrics.IngestRows.WithLabelValues("accepted").Add(float64(report.Summary.Success))
	metrics.IngestRows.WithLabelValues("rejected").Add(float64(report.Summary.Failed))
	e.logger.Info("batch ingested",
		zap.String("file", b.FileName),
		zap.Int("total", report.Summary.Total),
		zap.Int("success", report.Summary.Success),
		zap.Int("failed", report.Summary.Failed))
	return report, nil
}

// commit writes the transaction row, deducts every ingredient and refreshes
// all menus sharing those ingredients.
func (e *Engine) commit(tx *gorm.DB, row Row, a Approved, userID *uint) (Accepted, error) {
	id := strings.TrimSpace(row.TransactionID)
	if id == "" {
		id = e.newID()
	}

	unitPrice := a.Menu.Price
	if row.UnitPrice != nil {
		unitPrice = *row.UnitPrice
	}
	total := unitPrice * row.Quantity
	if row.Total != nil {
		total = *row.Total
	}

	txn := models.Transaction{
		ID:        id,
		MenuID:    a.Menu.ID,
		Date:      a.Date,
		Quantity:  row.Quantity,
		UnitPrice: unitPrice,
		Total:     total,
		Note:      strings.TrimSpace(row.Note),
		UserID:    userID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return Accepted{}, fmt.Errorf("insert transaction %s: %w", id, err)
	}

	var links []models.RecipeLink
	if err := tx.Where("menu_id = ?", a.Menu.ID).Find(&links).Error; err != nil {
		return Accepted{}, fmt.Errorf("load recipe of menu %s: %w", a.Menu.ID, err)
	}

	stockIDs := make([]string, 0, len(links))
	for _, l := range links {
		if l.RequiredQty <= 0 {
			continue
		}
		if err := deductStock(tx, l.StockID, l.RequiredQty*float64(row.Quantity)); err != nil {
			return Accepted{}, err
		}
		stockIDs = append(stockIDs, l.StockID)
	}

	if _, err := recalculateAffectedByStock(tx, stockIDs...); err != nil {
		return Accepted{}, err
	}
	return Accepted{Menu: a.Menu, Transaction: txn}, nil
}

// errNegativeStock means a deduction would leave an item below zero, which
// the availability check should have prevented.
var errNegativeStock = errors.New("stock would go negative")

func deductStock(tx *gorm.DB, stockID string, amount float64) error {
	var before float64
	if err := tx.Model(&models.StockItem{}).Select("quantity").Where("id = ?", stockID).Row().Scan(&before); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("deduct stock %s: %w", stockID, ErrNotFound)
		}
		return fmt.Errorf("read stock %s: %w", stockID, err)
	}
	// same tolerance as unitsFrom, so an approved row always fits
	if amount > before+qtyEpsilon {
		return fmt.Errorf("deduct %.4f from stock %s holding %.4f: %w", amount, stockID, before, errNegativeStock)
	}

	res := tx.Model(&models.StockItem{}).Where("id = ?", stockID).Updates(map[string]interface{}{
		"quantity":   gorm.Expr("MAX(quantity - ?, 0)", amount),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("deduct stock %s: %w", stockID, res.Error)
	}
	return nil
}

func rowID(row Row) string {
	if id := strings.TrimSpace(row.TransactionID); id != "" {
		return id
	}
	return "N/A"
}

// record hands entry to the sink. Audit failures never change the outcome.
func (e *Engine) record(ctx context.Context, entry audit.Entry) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Record(ctx, entry); err != nil {
		e.logger.Warn("audit record failed", zap.String("file", entry.FileName), zap.Error(err))
	}
}

// RejectUpload records a FAILED attempt for an upload that could not be
// parsed into rows at all.
func (e *Engine) RejectUpload(ctx context.Context, actor audit.Actor, fileName string, cause error) {
	metrics.IngestBatches.WithLabelValues(audit.StatusFailed).Inc()
	e.record(ctx, audit.Entry{
		Actor:       actor,
		Type:        audit.ActivityUpload,
		Status:      audit.StatusFailed,
		FileName:    fileName,
		ErrorDetail: cause.Error(),
	})
}
