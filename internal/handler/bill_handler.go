package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"billing-service/internal/store"
	"billing-service/pkg/logger"
	"billing-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BillHandler serves the bill editing surface: current-bill view, new
// bill, item append, and inline field patching.
type BillHandler struct {
	bills *store.BillStore
}

func NewBillHandler(bills *store.BillStore) *BillHandler {
	return &BillHandler{bills: bills}
}

// ItemRequest defines the structure for appending a line item
type ItemRequest struct {
	ItemName string  `json:"item_name" validate:"required"`
	Units    int     `json:"units" validate:"required,gt=0"`
	Rate     float64 `json:"rate" validate:"gte=0"`
}

// PatchBillRequest defines the structure for inline field edits. Value is
// a pointer so that an explicitly supplied empty string passes validation
// while a missing value does not.
type PatchBillRequest struct {
	Field string  `json:"field" validate:"required"`
	Value *string `json:"value" validate:"required"`
}

// GetCurrentBill handles retrieving the bill currently being edited,
// backfilling its display id on the way out.
func (h *BillHandler) GetCurrentBill(c echo.Context) error {
	log := logger.FromContext(c)

	bill, err := h.bills.Current()
	if errors.Is(err, store.ErrNotFound) {
		log.Info("No bill exists yet")
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "No bill exists, create one first",
		})
	}
	if err != nil {
		log.Error("Failed to load current bill", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve current bill",
		})
	}

	if err := h.bills.BackfillDisplayID(bill); err != nil {
		log.Error("Failed to backfill display id",
			zap.Uint("bill_id", bill.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve current bill",
		})
	}

	prometheus.RecordBillOperation("view")
	log.Info("Current bill retrieved",
		zap.Uint("bill_id", bill.ID),
		zap.String("display_id", bill.DisplayID),
		zap.Int("items", len(bill.Items)))
	return c.JSON(http.StatusOK, h.bills.View(bill))
}

// CreateBill handles starting a new bill. The new bill becomes current by
// virtue of having the highest identity.
func (h *BillHandler) CreateBill(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new bill")

	defer prometheus.TrackDBOperation("create_bill")(time.Now())
	bill, err := h.bills.Create()
	if err != nil {
		log.Error("Failed to create bill", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create bill",
		})
	}

	prometheus.RecordBillOperation("create")
	log.Info("Bill created",
		zap.Uint("bill_id", bill.ID),
		zap.String("date", bill.Date))
	return c.JSON(http.StatusCreated, bill)
}

// AppendItem handles adding a priced line to a bill. Invalid input or an
// unknown bill leaves the item collection untouched and reports why,
// instead of silently dropping the request.
func (h *BillHandler) AppendItem(c echo.Context) error {
	log := logger.FromContext(c)

	billID, err := parseBillID(c)
	if err != nil {
		log.Warn("Invalid bill id", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid bill id",
		})
	}

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid item request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Item request failed validation", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	defer prometheus.TrackDBOperation("append_item")(time.Now())
	item, err := h.bills.AppendItem(billID, req.ItemName, req.Units, req.Rate)
	if err != nil {
		return h.itemError(c, billID, err)
	}

	bill, err := h.bills.Get(billID)
	if err != nil {
		log.Error("Failed to reload bill after append",
			zap.Uint("bill_id", billID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve bill",
		})
	}

	prometheus.RecordBillOperation("append_item")
	log.Info("Item appended",
		zap.Uint("bill_id", billID),
		zap.Uint("item_id", item.ID),
		zap.String("name", item.Name),
		zap.Float64("amount", item.Amount))
	return c.JSON(http.StatusCreated, h.bills.View(bill))
}

// PatchBill handles overwriting a single editable attribute of a bill.
func (h *BillHandler) PatchBill(c echo.Context) error {
	log := logger.FromContext(c)

	billID, err := parseBillID(c)
	if err != nil {
		log.Warn("Invalid bill id", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid bill id",
		})
	}

	var req PatchBillRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid patch request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Patch request missing data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Missing data",
		})
	}

	err = h.bills.PatchField(billID, req.Field, *req.Value)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		log.Warn("Bill not found for patch", zap.Uint("bill_id", billID))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Bill not found",
		})
	case errors.Is(err, store.ErrConflict):
		log.Warn("Display id already in use",
			zap.Uint("bill_id", billID),
			zap.String("value", *req.Value))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Display id already in use",
		})
	default:
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			log.Warn("Disallowed bill field",
				zap.Uint("bill_id", billID),
				zap.String("field", req.Field))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Invalid field",
			})
		}
		log.Error("Failed to patch bill",
			zap.Uint("bill_id", billID),
			zap.String("field", req.Field),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update bill",
		})
	}

	prometheus.RecordBillOperation("patch")
	log.Info("Bill field updated",
		zap.Uint("bill_id", billID),
		zap.String("field", req.Field))
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (h *BillHandler) itemError(c echo.Context, billID uint, err error) error {
	log := logger.FromContext(c)

	if errors.Is(err, store.ErrNotFound) {
		log.Warn("Bill not found for item append", zap.Uint("bill_id", billID))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Bill not found",
		})
	}
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		log.Warn("Item rejected",
			zap.Uint("bill_id", billID),
			zap.String("field", verr.Field),
			zap.String("reason", verr.Reason))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": verr.Error(),
		})
	}
	log.Error("Failed to append item",
		zap.Uint("bill_id", billID),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "Failed to add item",
	})
}

func parseBillID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
