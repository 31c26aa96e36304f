package data

import (
	"strings"
	"sync"

	"gorm.io/gorm"
)

// Setting is a row of the settings table. Names are lower-case environment
// variable names, e.g. "serper_api_key".
type Setting struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"size:64;not null;uniqueIndex"`
	Value  string `gorm:"type:text;not null"`
	Active uint8  `gorm:"not null;default:1"`
}

// Settings caches the active rows of the settings table.
type Settings struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewSettings(values map[string]string) *Settings {
	s := &Settings{values: map[string]string{}}
	for k, v := range values {
		s.values[strings.ToLower(k)] = v
	}
	return s
}

// LoadSettings reads every active setting from db.
func LoadSettings(db *gorm.DB) (*Settings, error) {
	var rows []Setting
	if err := db.Where("active = ?", 1).Find(&rows).Error; err != nil {
		return nil, err
	}
	s := NewSettings(nil)
	for _, r := range rows {
		s.values[strings.ToLower(r.Name)] = r.Value
	}
	return s, nil
}

// Get returns the cached value for name, or "" when unset. Safe on a nil receiver.
func (s *Settings) Get(name string) string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[strings.ToLower(name)]
}

func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
