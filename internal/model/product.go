package model

// ReservedItemCode is the catalog entry used for freeform line items.
// It is seeded at initialization and can never be deleted.
const ReservedItemCode = "0000"

// Product is a reusable catalog entry suggesting a name and default rate
// for an item code. The code is caller-supplied, not store-generated, and
// no bill item holds a foreign key to it: the catalog is a pricing
// convenience, so a line item may outlive or diverge from the product it
// was copied from.
type Product struct {
	ItemCode    string  `json:"item_code" gorm:"type:varchar(32);primarykey"`
	ItemName    string  `json:"item_name" gorm:"type:varchar(255);not null"`
	DefaultRate float64 `json:"default_rate"`
}
