package models

// ReferenceRow is the shape shared by every lookup table. Rows are keyed by
// a stable slug and are unique by name.
type ReferenceRow struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:50" json:"icon,omitempty"`
	Color       string `gorm:"size:20" json:"color,omitempty"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}

type DataCategoryRef struct {
	ReferenceRow
}

func (DataCategoryRef) TableName() string { return "data_category_refs" }

type ConsentStatusRef struct {
	ReferenceRow
}

func (ConsentStatusRef) TableName() string { return "consent_status_refs" }

type DsarStatusRef struct {
	ReferenceRow
}

func (DsarStatusRef) TableName() string { return "dsar_status_refs" }

type RegulationRef struct {
	ReferenceRow
}

func (RegulationRef) TableName() string { return "regulation_refs" }

type IncidentStatusRef struct {
	ReferenceRow
}

func (IncidentStatusRef) TableName() string { return "incident_status_refs" }
