package store

import (
	"errors"
	"strconv"
	"time"

	"billing-service/internal/model"

	"gorm.io/gorm"
)

// BillStore owns the Bill and BillItem relations. Every operation runs
// against the injected handle; read-modify-write sequences are wrapped in
// a single transaction so a failure leaves no partial rows behind.
type BillStore struct {
	db *gorm.DB
}

func NewBillStore(db *gorm.DB) *BillStore {
	return &BillStore{db: db}
}

// BillView is the snapshot handed back to the caller for rendering: the
// bill's fields, its items in insertion order, and the total.
type BillView struct {
	model.Bill
	Total float64 `json:"total"`
}

// Create inserts a new empty bill dated today. The display id is left
// unassigned; it is backfilled the first time the bill is read.
func (s *BillStore) Create() (*model.Bill, error) {
	bill := model.Bill{
		Date:  time.Now().Format("2006-01-02"),
		Items: []model.BillItem{},
	}
	if err := s.db.Create(&bill).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

// Current returns the most recently created bill, items included in
// insertion order. ErrNotFound means no bill exists yet and the caller
// should create one.
func (s *BillStore) Current() (*model.Bill, error) {
	var bill model.Bill
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("bill_items.id ASC")
	}).Order("id DESC").First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// Get returns the bill with the given id, items in insertion order.
func (s *BillStore) Get(billID uint) (*model.Bill, error) {
	var bill model.Bill
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("bill_items.id ASC")
	}).First(&bill, billID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// BackfillDisplayID assigns the stringified identity as the display id if
// none is set yet. Idempotent: a bill that already has one is left
// untouched and no write is issued. Applied on every current-bill read so
// every bill ever shown carries a display id.
func (s *BillStore) BackfillDisplayID(bill *model.Bill) error {
	if bill.DisplayID != "" {
		return nil
	}
	displayID := strconv.FormatUint(uint64(bill.ID), 10)
	if err := s.db.Model(bill).Update("display_id", displayID).Error; err != nil {
		return err
	}
	bill.DisplayID = displayID
	return nil
}

// AppendItem validates, prices, and persists one line item on the given
// bill. Amount is derived once here as units * rate and never recomputed.
// All validation happens before the first write; on any failure the item
// collection is unchanged.
func (s *BillStore) AppendItem(billID uint, name string, units int, rate float64) (*model.BillItem, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if units <= 0 {
		return nil, &ValidationError{Field: "units", Reason: "must be greater than zero"}
	}
	if rate < 0 {
		return nil, &ValidationError{Field: "rate", Reason: "must not be negative"}
	}

	item := model.BillItem{
		Name:   name,
		Units:  units,
		Rate:   rate,
		Amount: float64(units) * rate,
		BillID: billID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Bill{}).Where("id = ?", billID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// PatchField overwrites exactly one of the editable bill attributes. The
// allow-list is an explicit switch of typed setters; any other field name
// is rejected without a write. Empty string is a legal value for the
// optional fields.
func (s *BillStore) PatchField(billID uint, field, value string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var bill model.Bill
		err := tx.First(&bill, billID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		switch field {
		case "display_id":
			// Display ids stay unique once assigned.
			var count int64
			if err := tx.Model(&model.Bill{}).
				Where("display_id = ? AND id <> ?", value, billID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrConflict
			}
			bill.DisplayID = value
		case "date":
			bill.Date = value
		case "recipient":
			bill.Recipient = value
		case "prepared_by":
			bill.PreparedBy = value
		case "checked_by":
			bill.CheckedBy = value
		case "fic_reprography":
			bill.FICReprography = value
		case "job_description":
			bill.JobDescription = value
		default:
			return &ValidationError{Field: "field", Reason: "not an editable bill attribute"}
		}

		return tx.Save(&bill).Error
	})
}

// Delete removes a bill and, through the cascade, all of its items.
func (s *BillStore) Delete(billID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Bill{}, billID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		// The cascade is declared on the relation, but sqlite without
		// foreign_keys=ON would leave orphans, so sweep explicitly.
		return tx.Where("bill_id = ?", billID).Delete(&model.BillItem{}).Error
	})
}

// View builds the response snapshot for a bill.
func (s *BillStore) View(bill *model.Bill) BillView {
	return BillView{
		Bill:  *bill,
		Total: ComputeTotal(bill.Items),
	}
}

// ComputeTotal sums the persisted amounts. It trusts the stored derived
// value rather than recomputing units * rate at read time.
func ComputeTotal(items []model.BillItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Amount
	}
	return total
}
