package models

// Product: table products. Migrations create no foreign keys; the admin
// service clears category/collection references and deletes images itself.
type Product struct {
	Base
	Name            string         `gorm:"not null" json:"name"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	SKU             string         `gorm:"index" json:"sku"`
	Description     string         `gorm:"type:text" json:"description"`
	Material        string         `json:"material"`
	PriceCents      int64          `gorm:"not null" json:"price_cents"`
	PromoPriceCents *int64         `json:"promo_price_cents"`
	Stock           int            `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CategoryID      *uint          `gorm:"index" json:"category_id"`
	Category        *Category      `json:"category,omitempty"`
	CollectionID    *uint          `gorm:"index" json:"collection_id"`
	Collection      *Collection    `json:"collection,omitempty"`
	Featured        bool           `gorm:"not null;default:false" json:"featured"`
	Active          bool           `gorm:"not null" json:"active"`
	Images          []ProductImage `json:"images"`
}

// EffectivePriceCents is the promotional price when one is set and lower
// than the list price.
func (p *Product) EffectivePriceCents() int64 {
	if p.PromoPriceCents != nil && *p.PromoPriceCents >= 0 && *p.PromoPriceCents < p.PriceCents {
		return *p.PromoPriceCents
	}
	return p.PriceCents
}

// PrimaryImageURL returns the image flagged primary, else the first one.
func (p *Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.Primary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// ProductImage: table product_images
type ProductImage struct {
	Base
	ProductID  uint   `gorm:"index;not null" json:"product_id"`
	URL        string `gorm:"not null" json:"url"`
	StorageKey string `json:"storage_key"`
	Alt        string `json:"alt"`
	Position   int    `gorm:"not null;default:0" json:"position"`
	Primary    bool   `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
}
