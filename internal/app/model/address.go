package model

import (
	"time"

	"gorm.io/gorm"
)

type AddressType string

const (
	AddressTypeHome   AddressType = "Home"
	AddressTypeOffice AddressType = "Office"
)

type Address struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	ReceiverName   string         `gorm:"size:100;not null" json:"receiver_name"`
	ReceiverMobile string         `gorm:"size:15;not null" json:"receiver_mobile"` // 10 digits
	HouseNo        string         `gorm:"size:100;not null" json:"house_no"`       // flat / house number
	Area           string         `gorm:"type:text;not null" json:"area"`
	Landmark       string         `gorm:"type:text" json:"landmark"`
	City           string         `gorm:"size:100" json:"city"`
	State          string         `gorm:"size:100" json:"state"`
	Pincode        string         `gorm:"size:10;not null" json:"pincode"` // 6 digits
	AddressType    AddressType    `gorm:"type:varchar(20);default:'Home'" json:"address_type"`
	IsPrimary      bool           `gorm:"default:false" json:"is_primary"` // at most one per user
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}
