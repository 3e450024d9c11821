package models

import "time"

// StoreEntry is one key of the portfolio key-value store when it lives in the database.
type StoreEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"column:key;uniqueIndex;size:191;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoreEntry) TableName() string { return "store_entries" }
