package waypoint

import (
	"fmt"

	"github.com/riadevigo/buoyplanner/pkg/core"
)

// FallbackStartName is the buoy routes start from until a live position is known.
const FallbackStartName = "Bouzas Norte"

// Seed returns the known buoys of the Ría de Vigo course.
func Seed() []Draft {
	return []Draft{
		{Name: "Bouzas Norte", Position: core.Position{Lat: 42.24762, Lng: -8.74563}, Description: "Área de saída e chegada, ao norte de Bouzas"},
		{Name: "La Negra", Position: core.Position{Lat: 42.15475, Lng: -8.88577}, Description: "Ponto de referência costeiro a sudoeste"},
		{Name: "Baliza Meteorológica Sur Cíes", Position: core.Position{Lat: 42.17748, Lng: -8.89342}, Description: "Baliza meteorológica situada a sul das Ilhas Cíes"},
		{Name: "Lousal", Position: core.Position{Lat: 42.27485, Lng: -8.68905}, Description: "Ponto de controle localizado a leste de Vigo"},
		{Name: "Tofiño", Position: core.Position{Lat: 42.22845, Lng: -8.77865}, Description: "Referência próxima ao porto pesqueiro"},
		{Name: "Subrido", Position: core.Position{Lat: 42.24283, Lng: -8.86533}, Description: "Marcador intermediário costeiro"},
		{Name: "Bondaña", Position: core.Position{Lat: 42.20532, Lng: -8.81032}, Description: "Sinalização próxima à costa sul de Vigo"},
	}
}

// SeedCollection adds every seed buoy to c.
func SeedCollection(c *Collection) error {
	for _, d := range Seed() {
		if _, err := c.Create(d); err != nil {
			return fmt.Errorf("seeding %s: %w", d.Name, err)
		}
	}
	return nil
}
