package models

// Record is satisfied by pointers to catalog models. It lets one CRUD
// implementation serve every collection.
type Record[T any] interface {
	*T
	GetID() int64
	SetID(id int64)
	// ApplyDefaults fills optional fields left empty by the caller
	ApplyDefaults()
	// Format returns the public representation of the record
	Format() map[string]interface{}
}
