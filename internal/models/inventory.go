package models

import (
	"time"
)

// The operational tables below belong to the application, not the
// installer. IsSample marks rows created by the sample data generator.

type DataType struct {
	Base
	Name            string  `gorm:"size:255;not null" json:"name"`
	Category        string  `gorm:"size:100;index" json:"category"`
	Description     string  `gorm:"type:text" json:"description"`
	Source          string  `gorm:"size:255" json:"source"`
	RetentionPeriod string  `gorm:"size:50" json:"retention_period"`
	OwnerID         *string `gorm:"size:36;index" json:"owner_id"`
	Owner           *User   `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	IsSample        bool    `gorm:"default:false;index" json:"is_sample"`
}

type ConsentRecord struct {
	Base
	SubjectEmail string     `gorm:"size:255;not null;index" json:"subject_email"`
	Purpose      string     `gorm:"size:255;not null" json:"purpose"`
	Status       string     `gorm:"size:50;not null" json:"status"`
	Regulation   string     `gorm:"size:50" json:"regulation"`
	GrantedAt    *time.Time `json:"granted_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsSample     bool       `gorm:"default:false;index" json:"is_sample"`
}

type DsarRequest struct {
	Base
	RequesterName  string    `gorm:"size:255;not null" json:"requester_name"`
	RequesterEmail string    `gorm:"size:255;not null" json:"requester_email"`
	RequestType    string    `gorm:"size:50;not null" json:"request_type"`
	Status         string    `gorm:"size:50;not null;index" json:"status"`
	Regulation     string    `gorm:"size:50" json:"regulation"`
	DueDate        time.Time `gorm:"index" json:"due_date"`
	AssignedToID   *string   `gorm:"size:36;index" json:"assigned_to_id"`
	AssignedTo     *User     `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"-"`
	IsSample       bool      `gorm:"default:false;index" json:"is_sample"`
}

type PrivacyNotice struct {
	Base
	Title       string     `gorm:"size:255;not null" json:"title"`
	Version     string     `gorm:"size:20" json:"version"`
	Content     string     `gorm:"type:text" json:"content"`
	Status      string     `gorm:"size:20;not null" json:"status"`
	CreatedByID *string    `gorm:"size:36;index" json:"created_by_id"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	PublishedAt *time.Time `json:"published_at"`
	IsSample    bool       `gorm:"default:false;index" json:"is_sample"`
}

type Incident struct {
	Base
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Severity     string    `gorm:"size:20;not null" json:"severity"`
	Status       string    `gorm:"size:50;not null" json:"status"`
	ReportedByID *string   `gorm:"size:36;index" json:"reported_by_id"`
	ReportedBy   *User     `gorm:"foreignKey:ReportedByID;constraint:OnDelete:SET NULL" json:"-"`
	OccurredAt   time.Time `json:"occurred_at"`
	IsSample     bool      `gorm:"default:false;index" json:"is_sample"`
}

type Domain struct {
	Base
	Name            string     `gorm:"uniqueIndex;size:255;not null" json:"name"`
	SSLExpiresAt    *time.Time `json:"ssl_expires_at"`
	DomainExpiresAt *time.Time `json:"domain_expires_at"`
	OwnerID         *string    `gorm:"size:36;index" json:"owner_id"`
	Owner           *User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	IsSample        bool       `gorm:"default:false;index" json:"is_sample"`
}

// Operational lists the application tables in dependency order, for
// AutoMigrate.
func Operational() []interface{} {
	return []interface{}{
		&User{},
		&ActivityLog{},
		&DataType{},
		&ConsentRecord{},
		&DsarRequest{},
		&PrivacyNotice{},
		&Incident{},
		&Domain{},
		&Alert{},
	}
}
