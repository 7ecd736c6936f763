package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proposal and Question are only read back as counts on a solicitation.

type Proposal struct {
	Id             string    `gorm:"primaryKey" json:"id"`
	SolicitationId string    `gorm:"not null;index" json:"solicitationId"`
	Title          string    `gorm:"size:500;not null;default:''" json:"title"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if len(p.Id) == 0 {
		p.Id = uuid.NewString()
	}
	return nil
}

type Question struct {
	Id             string    `gorm:"primaryKey" json:"id"`
	SolicitationId string    `gorm:"not null;index" json:"solicitationId"`
	Text           string    `gorm:"not null;default:''" json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if len(q.Id) == 0 {
		q.Id = uuid.NewString()
	}
	return nil
}

// Schema lists every persisted model in dependency order.
func Schema() []any {
	return []any{&Solicitation{}, &Clin{}, &Proposal{}, &Question{}, &User{}}
}
