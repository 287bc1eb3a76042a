package orm

import "time"

type sqlTable interface {
	CacheKey() string
}

type sqlConfig struct {
	Key   string `gorm:"primaryKey"`
	Value string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newSqlConfig(k string, v string) *sqlConfig {
	return &sqlConfig{
		Key:   k,
		Value: v,
	}
}

func (s *sqlConfig) CacheKey() string {
	return s.Key
}

type sqlRepository struct {
	RootDir    string `gorm:"primaryKey"`
	Name       string
	Branch     string
	LastImport time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *sqlRepository) CacheKey() string {
	return s.RootDir
}
