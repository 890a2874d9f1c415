package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentRowID is the fixed id of the single canonical document row.
const DocumentRowID int64 = 1

// DocumentRow is the canonical document storage row: a fixed id and one
// JSONB column holding the entire serialized Document.
type DocumentRow struct {
	ID        int64          `json:"id,string" gorm:"primaryKey"`
	Data      datatypes.JSON `json:"data" gorm:"type:jsonb"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName Specify table name
func (DocumentRow) TableName() string {
	return "hub_document"
}

// HubConfig is a category/name settings row used for operational overrides
// (poll interval, online threshold) without redeploying devices.
type HubConfig struct {
	ID        int64     `json:"id,string" form:"id"`
	Sort      int       `json:"sort" form:"sort"`
	Type      string    `gorm:"index" json:"type" form:"type"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Value     string    `json:"value" form:"value"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (HubConfig) TableName() string {
	return "hub_config"
}

// HubAuditLog records editor-side operations against the canonical document.
type HubAuditLog struct {
	ID        int64     `json:"id,string"`
	OprName   string    `json:"opr_name"`
	OprIp     string    `json:"opr_ip"`
	OptAction string    `json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `json:"opt_time"`
}

// TableName Specify table name
func (HubAuditLog) TableName() string {
	return "hub_audit_log"
}
