// Package repository provides one typed repository per entity table,
// replacing the loose table-name-keyed record store the dashboard
// originally talked to. Each repository exposes the same CRUD contract:
// Create, Get, Search (case-insensitive substring over text columns),
// Update and Delete.
package repository

import (
	"errors"
	"time"

	"paystream/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func notFound(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &types.NotFoundError{Entity: entity, ID: id}
	}
	return err
}

func newID() string {
	return uuid.New().String()
}

func now() time.Time {
	return time.Now().UTC()
}
