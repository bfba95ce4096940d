package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PermissionMap is the flat wire/storage form of a client's feature
// permissions: fully-qualified dotted path -> bool. Stored as JSONB.
type PermissionMap map[string]bool

// Value implements driver.Valuer for JSONB storage.
func (p PermissionMap) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB reads.
func (p *PermissionMap) Scan(src any) error {
	if src == nil {
		*p = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for PermissionMap", src)
	}
	return json.Unmarshal(data, p)
}

// Client is a provisioned per-business access record: the access code a
// client uses to open the dashboard, plus the feature permissions granted
// to it.
type Client struct {
	ID          int64         `db:"id" json:"id"`
	PublicID    string        `db:"public_id" json:"public_id"` // UUID handed to the frontend
	BusinessID  string        `db:"business_id" json:"business_id"`
	Passcode    string        `db:"passcode" json:"-"` // 5 ASCII digits, never echoed back
	Permissions PermissionMap `db:"permissions" json:"permissions"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// ProvisionClientInput is the provisioning submission body.
type ProvisionClientInput struct {
	BusinessID  string        `json:"business_id" binding:"required"`
	Passcode    string        `json:"passcode" binding:"required"`
	Permissions PermissionMap `json:"permissions"`
}

// TogglePermissionInput flips a single permission leaf on an existing client.
type TogglePermissionInput struct {
	Path string `json:"path" binding:"required"`
}
