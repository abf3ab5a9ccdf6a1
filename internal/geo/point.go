// Package geo holds the geographic point type shared by events, projects
// and field observations.
package geo

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PointInput is a coordinate as accepted in request bodies. Both
// coordinates must be present; zero is a valid value.
type PointInput struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// NewPointInput returns an input holding lat and lon.
func NewPointInput(lat, lon float64) *PointInput {
	return &PointInput{Latitude: &lat, Longitude: &lon}
}

// Point returns the validated input as a Point.
func (in PointInput) Point() Point {
	var p Point
	if in.Latitude != nil {
		p.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		p.Longitude = *in.Longitude
	}
	return p
}

// GeoJSON is a GeoJSON Point geometry. Coordinates are [longitude, latitude].
type GeoJSON struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// GeoJSON returns p as a GeoJSON geometry.
func (p Point) GeoJSON() GeoJSON {
	return GeoJSON{Type: "Point", Coordinates: [2]float64{p.Longitude, p.Latitude}}
}

// FromNullable builds a Point when both coordinates are present.
func FromNullable(lat, lon *float64) *Point {
	if lat == nil || lon == nil {
		return nil
	}
	return &Point{Latitude: *lat, Longitude: *lon}
}

// GeoJSONFromNullable is FromNullable followed by GeoJSON.
func GeoJSONFromNullable(lat, lon *float64) *GeoJSON {
	p := FromNullable(lat, lon)
	if p == nil {
		return nil
	}
	g := p.GeoJSON()
	return &g
}
