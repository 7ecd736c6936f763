package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status given to solicitations created without one.
const SolicitationDraft = "draft"

type Solicitation struct {
	Id                 string            `gorm:"primaryKey" json:"id"`
	Number             string            `gorm:"size:100;not null" json:"number"`
	Title              string            `gorm:"size:500;not null" json:"title"`
	Agency             string            `gorm:"size:200;not null" json:"agency"`
	Description        string            `gorm:"not null;default:''" json:"description"`
	DueDate            time.Time         `gorm:"not null" json:"dueDate"`
	QuestionCutoffDate *time.Time        `json:"questionCutoffDate"`
	ProposalCutoffDate *time.Time        `json:"proposalCutoffDate"`
	Status             string            `gorm:"size:50;not null;default:draft" json:"status"`
	EvaluationPeriods  *string           `json:"evaluationPeriods"`
	CreatedAt          time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
	Clins              []Clin            `gorm:"foreignKey:SolicitationId;constraint:OnDelete:CASCADE" json:"clins"`
	Count              SolicitationCount `gorm:"-" json:"_count"`
}

func (s *Solicitation) BeforeCreate(tx *gorm.DB) error {
	if len(s.Id) == 0 {
		s.Id = uuid.NewString()
	}
	if len(s.Status) == 0 {
		s.Status = SolicitationDraft
	}
	return nil
}

// SolicitationCount holds the number of related rows, it is never persisted.
type SolicitationCount struct {
	Proposals int64 `json:"proposals"`
	Questions int64 `json:"questions"`
}

// Clin is a contract line item owned by exactly one solicitation. Position
// keeps the order of the submitted list.
type Clin struct {
	Id             string    `gorm:"primaryKey" json:"id"`
	SolicitationId string    `gorm:"not null;index" json:"solicitationId"`
	Name           string    `gorm:"size:200;not null" json:"name"`
	Description    string    `gorm:"not null;default:''" json:"description"`
	PricingModel   string    `gorm:"size:50;not null;default:''" json:"pricingModel"`
	PeriodId       *string   `gorm:"size:100" json:"periodId"`
	Position       int       `gorm:"not null" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (c *Clin) BeforeCreate(tx *gorm.DB) error {
	if len(c.Id) == 0 {
		c.Id = uuid.NewString()
	}
	return nil
}

// SolicitationUpdate describes a partial update. Fields is keyed by column name
// and holds only the columns present in the request. Clins replaces the whole
// CLIN collection when ReplaceClins is set, an empty list removes every CLIN.
type SolicitationUpdate struct {
	Fields       map[string]any
	Clins        []Clin
	ReplaceClins bool
}

func (u SolicitationUpdate) Empty() bool {
	return len(u.Fields) == 0 && !u.ReplaceClins
}
