package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Menu is a navigation node. ParentID is nil for root nodes; deleting a node
// nulls the parent reference of its children instead of cascading.
type Menu struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	ParentID   *uint     `json:"parent_id" gorm:"index"`
	Parent     *Menu     `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL"`
	RouteOrURL string    `json:"route_or_url" gorm:"size:255;not null;default:'#'"`
	Icon       *string   `json:"icon" gorm:"size:64"`
	Active     bool      `json:"active" gorm:"not null;default:true"`
	Position   int       `json:"position" gorm:"not null"`
	Routes     RouteList `json:"routes" gorm:"type:json"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName keeps the table name from the original schema.
func (Menu) TableName() string {
	return "menus"
}

// RouteList is a JSON-encoded list of route names used for active-state
// matching.
type RouteList []string

// Value implements driver.Valuer, serializing to a JSON array. A nil list is
// stored as "[]" to match the column default.
func (r RouteList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(r))
	if err != nil {
		return nil, fmt.Errorf("marshal routes: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (r *RouteList) Scan(value interface{}) error {
	if value == nil {
		*r = RouteList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported routes column type %T", value)
	}
	if len(data) == 0 {
		*r = RouteList{}
		return nil
	}
	return json.Unmarshal(data, (*[]string)(r))
}

// Contains reports whether the list holds the given route name.
func (r RouteList) Contains(route string) bool {
	for _, name := range r {
		if name == route {
			return true
		}
	}
	return false
}
