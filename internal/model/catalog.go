package model

import "gorm.io/gorm"

type Category struct {
	gorm.Model
	Name        string `gorm:"column:name;not null"`
	Slug        string `gorm:"column:slug;unique;not null"`
	Description string `gorm:"column:description;type:text"`
}

type Manufacturer struct {
	gorm.Model
	Name string `gorm:"column:name;not null"`
	Slug string `gorm:"column:slug;unique;not null"`
}

type Product struct {
	gorm.Model
	Name           string        `gorm:"column:name;not null"`
	Slug           string        `gorm:"column:slug;unique;not null"`
	Description    string        `gorm:"column:description;type:text"`
	IsActive       bool          `gorm:"column:is_active;default:true;not null"`
	CategoryID     uint          `gorm:"column:category_id;not null;index"`
	Category       *Category     `gorm:"foreignKey:CategoryID"`
	ManufacturerID *uint         `gorm:"column:manufacturer_id"`
	Manufacturer   *Manufacturer `gorm:"foreignKey:ManufacturerID"`
}
