package sequence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

const dbBackend = "database"

// Sequence is one named counter row
type Sequence struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	NextValue int       `gorm:"not null" json:"next_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DBCounter keeps counters in a table through gorm. The increment runs as
// an UPDATE inside a transaction, so concurrent callers serialize on the row.
type DBCounter struct {
	db    *gorm.DB
	name  string
	table string
}

// NewDBCounter creates a counter for the sequence called name stored in
// table. Migrate must run once before the first Next.
func NewDBCounter(db *gorm.DB, table, name string) *DBCounter {
	if table == "" {
		table = "document_sequences"
	}
	return &DBCounter{db: db, name: name, table: table}
}

// Migrate creates the sequence table when missing.
func (c *DBCounter) Migrate(ctx context.Context) error {
	if err := c.db.WithContext(ctx).Table(c.table).AutoMigrate(&Sequence{}); err != nil {
		return persistErr(dbBackend, "migrate", err)
	}
	return nil
}

func (c *DBCounter) Next(ctx context.Context) (int, error) {
	var issued int
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(c.table).
			Where("name = ?", c.name).
			Updates(map[string]interface{}{
				"next_value": gorm.Expr("next_value + ?", 1),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			issued = 1
			return tx.Table(c.table).Create(&Sequence{
				Name:      c.name,
				NextValue: 2,
				UpdatedAt: time.Now(),
			}).Error
		}

		var row Sequence
		if err := tx.Table(c.table).Where("name = ?", c.name).Take(&row).Error; err != nil {
			return err
		}
		issued = row.NextValue - 1
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, persistErr(dbBackend, "next", err)
	}
	return issued, nil
}
