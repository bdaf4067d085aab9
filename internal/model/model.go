package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Waypoint{},
}

// Waypoint is a named buoy in the session collection
type Waypoint struct {
	ID          string     `json:"id" gorm:"primarykey;size:36"`
	Seq         uint       `json:"seq" gorm:"index:idx_waypoint_seq"`  // Insertion order, the collection order
	Name        string     `json:"name" gorm:"size:128;index:idx_waypoint_name"`
	Position    geom.Point `json:"position" gorm:"type:blob"`         // Decimal degrees, X = longitude, Y = latitude
	Description string     `json:"description" gorm:"size:1024"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (*Waypoint) TableName() string {
	return "waypoints"
}
