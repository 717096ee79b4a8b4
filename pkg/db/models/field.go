package models

import (
	"time"

	"gorm.io/gorm"
)

// Field represents a single metadata key/value pair attached to a record.
// Values can be large free text, such as a full generation prompt.
type Field struct {
	ID       uint   `gorm:"primaryKey"`
	RecordID uint   `gorm:"not null;index:idx_record_fields"`
	Key      string `gorm:"type:text;not null;index:idx_field_key"`
	Value    string `gorm:"type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// Relationships
	Record Record `gorm:"foreignKey:RecordID;references:ID"`
}
