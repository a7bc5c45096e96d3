package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SnapshotRepository is insert-only.
type SnapshotRepository interface {
	Insert(ctx context.Context, db *gorm.DB, snapshot *Snapshot) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Snapshot, error)
}
