package storage

import (
	"errors"
	"fmt"

	"github.com/riadevigo/buoyplanner/internal/database"
	"github.com/riadevigo/buoyplanner/internal/model"
	"github.com/riadevigo/buoyplanner/internal/model/convert"
	"github.com/riadevigo/buoyplanner/pkg/core"
	"gorm.io/gorm"
)

// SQLite stores waypoints in an in-memory SQLite database through GORM.
// Positions are kept as WKB points.
type SQLite struct {
	db  *database.Manager
	seq uint
}

// NewSQLite creates a backend on top of an unconnected manager.
func NewSQLite(db *database.Manager) *SQLite {
	return &SQLite{db: db}
}

// Init connects and migrates the schema.
func (b *SQLite) Init() error {
	if err := b.db.Connect(); err != nil {
		return err
	}
	if err := b.db.Setup(); err != nil {
		return err
	}

	var last model.Waypoint
	err := b.db.DB.Order("seq desc").Limit(1).Find(&last).Error
	if err != nil {
		return fmt.Errorf("failed to read waypoint sequence: %w", err)
	}
	b.seq = last.Seq
	return nil
}

// Close drops the database.
func (b *SQLite) Close() error {
	return b.db.Close()
}

// LoadWaypoints returns every row in insertion order.
func (b *SQLite) LoadWaypoints() ([]core.Waypoint, error) {
	var rows []model.Waypoint
	if err := b.db.DB.Order("seq asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load waypoints: %w", err)
	}

	out := make([]core.Waypoint, 0, len(rows))
	for _, row := range rows {
		w, err := convert.WaypointToCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// SaveWaypoint inserts w.
func (b *SQLite) SaveWaypoint(w *core.Waypoint) error {
	row := convert.CoreToWaypoint(*w, b.seq+1)
	if err := b.db.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save waypoint %s: %w", w.ID, err)
	}
	b.seq++
	b.db.Logger.Debug().Str("id", w.ID).Str("name", w.Name).Msg("Saved waypoint")
	return nil
}

// DeleteWaypoint removes a row by ID.
func (b *SQLite) DeleteWaypoint(id string) error {
	res := b.db.DB.Where("id = ?", id).Delete(&model.Waypoint{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete waypoint %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// IsNotFound reports whether err means the waypoint was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
