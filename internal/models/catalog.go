package models

import "time"

// Category: table categories
type Category struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `json:"image_url"`
	Active      bool   `gorm:"not null" json:"active"`
}

// Collection: table collections ("coleções")
type Collection struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `json:"image_url"`
	Featured    bool   `gorm:"not null;default:false" json:"featured"`
	Active      bool   `gorm:"not null" json:"active"`
}

// CarouselItem: table carousel_items (home page banner)
type CarouselItem struct {
	Base
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	ImageURL   string `gorm:"not null" json:"image_url"`
	StorageKey string `json:"storage_key"`
	LinkURL    string `json:"link_url"`
	Position   int    `gorm:"not null;default:0" json:"position"`
	Active     bool   `gorm:"not null" json:"active"`
}

// Setting: table settings, a plain key/value store
type Setting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Public    bool      `gorm:"not null;default:false" json:"public"`
	UpdatedAt time.Time `json:"updated_at"`
}
