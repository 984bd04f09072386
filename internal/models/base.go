package models

import "time"

// Base: fields shared by every table
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every model migrated at startup.
func All() []any {
	return []any{
		&AdminUser{},
		&Category{},
		&Collection{},
		&Product{},
		&ProductImage{},
		&CarouselItem{},
		&Setting{},
		&Order{},
		&OrderItem{},
		&CartItem{},
		&AuditLog{},
	}
}
