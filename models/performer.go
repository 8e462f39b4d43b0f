package models

// DefaultGender is stored when a performer is created without a gender
const DefaultGender = "Other"

// Performer represents an actor in the catalog
type Performer struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name" validate:"required,max=255"`
	Age    int    `json:"age" db:"age" validate:"required,gt=0,max=150"`
	Gender string `json:"gender" db:"gender" validate:"max=50"`
}

// TableName returns the table name for the Performer model
func (Performer) TableName() string {
	return "actors"
}

// NewPerformer creates a new Performer with defaults applied
func NewPerformer(name string, age int, gender string) *Performer {
	p := &Performer{Name: name, Age: age, Gender: gender}
	p.ApplyDefaults()
	return p
}

func (p *Performer) GetID() int64   { return p.ID }
func (p *Performer) SetID(id int64) { p.ID = id }

// ApplyDefaults sets the gender to DefaultGender when empty
func (p *Performer) ApplyDefaults() {
	if p.Gender == "" {
		p.Gender = DefaultGender
	}
}

// Format returns the public representation of the performer
func (p *Performer) Format() map[string]interface{} {
	return map[string]interface{}{
		"id":     p.ID,
		"name":   p.Name,
		"age":    p.Age,
		"gender": p.Gender,
	}
}
