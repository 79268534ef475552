package model

// Bill is a single invoice. Bills are never closed or finalized; the one
// with the highest ID is the bill currently being edited.
type Bill struct {
	ID uint `json:"id" gorm:"primarykey"`
	// DisplayID is the human-facing bill number. It starts out empty and
	// is backfilled with the stringified ID the first time the bill is
	// read, so every bill ever shown carries one.
	DisplayID      string     `json:"display_id" gorm:"type:varchar(64);index"`
	Date           string     `json:"date" gorm:"type:varchar(10);not null"`
	Recipient      string     `json:"recipient" gorm:"type:text"`
	PreparedBy     string     `json:"prepared_by" gorm:"type:text"`
	CheckedBy      string     `json:"checked_by" gorm:"type:text"`
	FICReprography string     `json:"fic_reprography" gorm:"type:text"`
	JobDescription string     `json:"job_description" gorm:"type:text"`
	Items          []BillItem `json:"items" gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
}

// BillItem is one priced line of a bill. Items are append-only: they are
// created with Amount = Units * Rate persisted, and never updated after
// that, so Amount is trusted as stored and not recomputed on read.
type BillItem struct {
	ID     uint    `json:"id" gorm:"primarykey"`
	Name   string  `json:"name" gorm:"type:text;not null"`
	Units  int     `json:"units" gorm:"not null"`
	Rate   float64 `json:"rate" gorm:"not null"`
	Amount float64 `json:"amount" gorm:"not null"`
	BillID uint    `json:"bill_id" gorm:"index;not null"`
}
