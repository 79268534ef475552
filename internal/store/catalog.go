package store

import (
	"errors"

	"billing-service/internal/model"

	"gorm.io/gorm"
)

// CatalogStore owns the Product relation. It has no dependency on bills:
// line items copy a product's name and rate at append time and never point
// back at the catalog.
type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// baseline catalog inserted the first time the service starts against an
// empty database. "0000" is the reserved freeform entry.
var seedProducts = []model.Product{
	{ItemCode: "0000", ItemName: "Custom Item", DefaultRate: 0.00},
	{ItemCode: "0001", ItemName: "A4 Plain Paper Ream", DefaultRate: 350.00},
	{ItemCode: "0002", ItemName: "Official Envelope (Pack of 100)", DefaultRate: 150.00},
	{ItemCode: "0003", ItemName: "Spiral Binding Service", DefaultRate: 50.00},
	{ItemCode: "0004", ItemName: "Color Printout (A4)", DefaultRate: 10.00},
}

// List returns the full catalog ordered by item code.
func (s *CatalogStore) List() ([]model.Product, error) {
	var products []model.Product
	if err := s.db.Order("item_code ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns a single product by code.
func (s *CatalogStore) Get(code string) (*model.Product, error) {
	var product model.Product
	err := s.db.First(&product, "item_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new catalog entry. A code that is already taken is a
// conflict; nothing is written in that case.
func (s *CatalogStore) Create(code, name string, rate float64) (*model.Product, error) {
	if code == "" {
		return nil, &ValidationError{Field: "item_code", Reason: "must not be empty"}
	}
	if name == "" {
		return nil, &ValidationError{Field: "item_name", Reason: "must not be empty"}
	}

	product := model.Product{ItemCode: code, ItemName: name, DefaultRate: rate}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Where("item_code = ?", code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		return tx.Create(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update changes only the supplied fields of an existing product.
func (s *CatalogStore) Update(code string, name *string, rate *float64) (*model.Product, error) {
	var product model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&product, "item_code = ?", code).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if name != nil {
			if *name == "" {
				return &ValidationError{Field: "item_name", Reason: "must not be empty"}
			}
			product.ItemName = *name
		}
		if rate != nil {
			product.DefaultRate = *rate
		}
		return tx.Save(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a catalog entry. The reserved entry is protected no
// matter what else is in the catalog; the check runs before existence so
// deleting "0000" is forbidden, never not-found. Deletion never consults
// bill items, which have no foreign key into the catalog.
func (s *CatalogStore) Delete(code string) error {
	if code == model.ReservedItemCode {
		return ErrForbidden
	}
	result := s.db.Delete(&model.Product{}, "item_code = ?", code)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedIfEmpty inserts the baseline products when the catalog holds no
// rows at all. Run once at startup, after migration; it establishes the
// invariant that the reserved "0000" entry exists.
func (s *CatalogStore) SeedIfEmpty() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		products := make([]model.Product, len(seedProducts))
		copy(products, seedProducts)
		return tx.Create(&products).Error
	})
}
