package models

// Production represents a movie in the catalog
type Production struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title" validate:"required,max=255"`
	ReleaseDate string `json:"release_date" db:"release_date" validate:"required,max=64"`
}

// TableName returns the table name for the Production model
func (Production) TableName() string {
	return "movies"
}

// NewProduction creates a new Production
func NewProduction(title, releaseDate string) *Production {
	return &Production{Title: title, ReleaseDate: releaseDate}
}

func (p *Production) GetID() int64   { return p.ID }
func (p *Production) SetID(id int64) { p.ID = id }

// ApplyDefaults is a no-op; every production field is required
func (p *Production) ApplyDefaults() {}

// Format returns the public representation of the production
func (p *Production) Format() map[string]interface{} {
	return map[string]interface{}{
		"id":           p.ID,
		"title":        p.Title,
		"release_date": p.ReleaseDate,
	}
}
