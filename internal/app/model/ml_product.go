package model

// MLProduct is one row of the recommendation training corpus. The table is
// populated by the seed importer and read by the offline trainer; the
// serving path only sees the gob artifacts built from it.
type MLProduct struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	ProductID   uint   `gorm:"index" json:"product_id"`
	ProductName string `gorm:"uniqueIndex;not null" json:"product_name"`
	Description string `gorm:"type:text;not null" json:"description"`
}

func (MLProduct) TableName() string {
	return "ml_products"
}
