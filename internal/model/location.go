package model

import "gorm.io/gorm"

type Country struct {
	gorm.Model
	Name string `gorm:"column:name;unique;not null"`
	Code string `gorm:"column:code;size:3;unique;not null"`
}

type State struct {
	gorm.Model
	Name      string   `gorm:"column:name;not null;uniqueIndex:idx_states_name_country"`
	CountryID uint     `gorm:"column:country_id;not null;uniqueIndex:idx_states_name_country"`
	Country   *Country `gorm:"foreignKey:CountryID"`
}

type City struct {
	gorm.Model
	Name    string `gorm:"column:name;not null;uniqueIndex:idx_cities_name_state"`
	StateID uint   `gorm:"column:state_id;not null;uniqueIndex:idx_cities_name_state"`
	State   *State `gorm:"foreignKey:StateID"`
}
