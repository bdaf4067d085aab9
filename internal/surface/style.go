package surface

// MarkerStyle describes a point marker icon.
type MarkerStyle struct {
	IconURL     string
	RetinaURL   string
	ShadowURL   string
	IconSize    [2]int
	IconAnchor  [2]int
	PopupAnchor [2]int
	ShadowSize  [2]int
}

// LineStyle describes a polyline stroke.
type LineStyle struct {
	Color     string
	Weight    float64
	Opacity   float64
	DashArray string
}

// CircleStyle describes a circle outline and fill.
type CircleStyle struct {
	Color       string
	FillColor   string
	FillOpacity float64
	Weight      float64
}

// TooltipStyle describes a label anchored to a point.
type TooltipStyle struct {
	// Permanent tooltips stay open instead of showing on hover.
	Permanent bool
	Direction string
	OffsetY   int
	ClassName string
}

// Styles is the set of descriptors used by the view. Values are copied into
// every rendering call; nothing holds on to a shared instance.
type Styles struct {
	Waypoint MarkerStyle
	Vessel   MarkerStyle
	Segment  LineStyle
	Accuracy CircleStyle
	Label    TooltipStyle
}

const leafletImages = "https://unpkg.com/leaflet@1.9.4/dist/images/"

// DefaultStyles builds the descriptors once at startup.
func DefaultStyles() Styles {
	pin := MarkerStyle{
		IconURL:     leafletImages + "marker-icon.png",
		RetinaURL:   leafletImages + "marker-icon-2x.png",
		ShadowURL:   leafletImages + "marker-shadow.png",
		IconSize:    [2]int{25, 41},
		IconAnchor:  [2]int{12, 41},
		PopupAnchor: [2]int{1, -34},
		ShadowSize:  [2]int{41, 41},
	}

	return Styles{
		Waypoint: pin,
		Vessel: MarkerStyle{
			IconURL:    "https://cdn-icons-png.flaticon.com/512/2942/2942076.png",
			IconSize:   [2]int{32, 32},
			IconAnchor: [2]int{16, 16},
		},
		Segment: LineStyle{
			Color:     "#f97316",
			Weight:    4,
			Opacity:   0.9,
			DashArray: "8 6",
		},
		Accuracy: CircleStyle{
			Color:       "#2563eb",
			FillColor:   "#3b82f6",
			FillOpacity: 0.15,
			Weight:      1,
		},
		Label: TooltipStyle{
			Permanent: true,
			Direction: "top",
			OffsetY:   -12,
			ClassName: "live-position-label",
		},
	}
}
