package geo

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtrace/wildtrace-api/internal/validation"
)

func TestPointGeoJSON(t *testing.T) {
	g := Point{Latitude: 51.5, Longitude: -0.12}.GeoJSON()
	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[-0.12,51.5]}`, string(b))
}

func TestFromNullable(t *testing.T) {
	lat, lon := 10.0, 20.0
	assert.Nil(t, FromNullable(nil, &lon))
	assert.Nil(t, FromNullable(&lat, nil))
	assert.Equal(t, &Point{Latitude: 10, Longitude: 20}, FromNullable(&lat, &lon))
	assert.Nil(t, GeoJSONFromNullable(nil, nil))
	assert.Equal(t, [2]float64{20, 10}, GeoJSONFromNullable(&lat, &lon).Coordinates)
}

func TestPointInputValidation(t *testing.T) {
	lat := 1.0

	tests := []struct {
		name  string
		in    PointInput
		valid bool
	}{
		{"bounds", *NewPointInput(-90, 180), true},
		{"zero coordinates", *NewPointInput(0, 0), true},
		{"latitude above range", *NewPointInput(90.5, 0), false},
		{"longitude below range", *NewPointInput(0, -181), false},
		{"empty", PointInput{}, false},
		{"missing longitude", PointInput{Latitude: &lat}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateStruct(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPointInputPoint(t *testing.T) {
	assert.Equal(t, Point{Latitude: 52.1, Longitude: 5.1}, NewPointInput(52.1, 5.1).Point())
}
