package models

import (
	"time"

	"gorm.io/gorm"
)

// Record represents the indexed metadata of a single image file.
// The absolute file path is the record's identity; there is at most
// one live record per path.
type Record struct {
	ID   uint   `gorm:"primaryKey"`
	Path string `gorm:"type:text;not null;uniqueIndex"`

	// LastIndexed is the time of the last successful extraction
	// that produced this record's fields.
	LastIndexed time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// Relationships
	Fields []Field `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
}

// Metadata returns the record's fields as a key/value map.
func (r *Record) Metadata() map[string]string {
	meta := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		meta[f.Key] = f.Value
	}
	return meta
}

// Field returns the value stored under key and whether the key is
// present.
func (r *Record) Field(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
