// Package store persists the tracked fund set.
package store

import "FundEye/internal/model"

// Store is the persistence collaborator: the pipeline reads the full
// tracked set at cycle start and writes the full merged set back at
// cycle end. It never creates or deletes individual funds.
type Store interface {
	Load() ([]model.Fund, error)
	Save(funds []model.Fund) error
}
