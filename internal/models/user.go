package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id                  string    `gorm:"primaryKey" json:"id"`
	Email               string    `gorm:"size:320;not null;uniqueIndex" json:"email"`
	Name                string    `gorm:"size:200;not null" json:"name"`
	Role                string    `gorm:"size:50;not null" json:"role"`
	CompanyName         *string   `gorm:"size:200" json:"companyName"`
	UeiNumber           *string   `gorm:"size:50" json:"ueiNumber"`
	SocioEconomicStatus []string  `gorm:"serializer:json;not null" json:"socioEconomicStatus"`
	CreatedAt           time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if len(u.Id) == 0 {
		u.Id = uuid.NewString()
	}
	if u.SocioEconomicStatus == nil {
		u.SocioEconomicStatus = []string{}
	}
	return nil
}
