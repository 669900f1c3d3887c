package models

import (
	"time"
)

// Client is a row of the remote clients table. Older rows carry the
// Portuguese column names (nome, telefone); newer ones use name and phone.
type Client struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(255)" json:"name,omitempty"`
	Nome      string    `gorm:"type:varchar(255)" json:"nome,omitempty"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Telefone  string    `gorm:"type:varchar(50)" json:"telefone,omitempty"`
	Status    string    `gorm:"type:varchar(20);index;default:'SIM'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}
