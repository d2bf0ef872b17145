package feed

import (
	"math"
	"reflect"
	"testing"
)

func Test_BuildRouteShape(t *testing.T) {
	points := []ShapePoint{
		{ShapeId: "sh1", Latitude: 46.77, Longitude: 23.62, Sequence: 3},
		{ShapeId: "sh1", Latitude: 46.77, Longitude: 23.60, Sequence: 1},
		{ShapeId: "sh1", Latitude: 46.77, Longitude: 23.61, Sequence: 2},
	}

	shape := BuildRouteShape("sh1", points)
	if shape == nil {
		t.Fatal("BuildRouteShape() returned nil")
	}
	if shape.ShapeId != "sh1" {
		t.Errorf("ShapeId = %s, want sh1", shape.ShapeId)
	}

	wantPoints := []Coordinates{
		{Latitude: 46.77, Longitude: 23.60},
		{Latitude: 46.77, Longitude: 23.61},
		{Latitude: 46.77, Longitude: 23.62},
	}
	if !reflect.DeepEqual(shape.Points, wantPoints) {
		t.Errorf("Points = %+v, want %+v", shape.Points, wantPoints)
	}

	if len(shape.Segments) != len(shape.Points)-1 {
		t.Fatalf("len(Segments) = %d, want %d", len(shape.Segments), len(shape.Points)-1)
	}
	for i, segment := range shape.Segments {
		if segment.Start != shape.Points[i] || segment.End != shape.Points[i+1] {
			t.Errorf("Segments[%d] does not connect Points[%d] to Points[%d]", i, i, i+1)
		}
		//0.01 degrees of longitude at this latitude is about 761 meters
		if math.Abs(segment.Distance-761.3) > 1.0 {
			t.Errorf("Segments[%d].Distance = %f, want about 761.3", i, segment.Distance)
		}
	}

	//the input slice order must be left alone
	if points[0].Sequence != 3 {
		t.Errorf("input slice was mutated")
	}
}

func Test_BuildRouteShape_empty(t *testing.T) {
	if shape := BuildRouteShape("sh1", nil); shape != nil {
		t.Errorf("BuildRouteShape() = %+v, want nil", shape)
	}
}

func Test_DensityCenter(t *testing.T) {
	t.Run("empty input errors", func(t *testing.T) {
		_, err := DensityCenter(nil)
		if err == nil {
			t.Errorf("DensityCenter() expected an error")
		}
	})

	t.Run("single point is its own center", func(t *testing.T) {
		point := Coordinates{Latitude: 46.77, Longitude: 23.60}
		center, err := DensityCenter([]Coordinates{point})
		if err != nil {
			t.Fatalf("DensityCenter() error = %v", err)
		}
		if center != point {
			t.Errorf("center = %+v, want %+v", center, point)
		}
	})

	t.Run("outlier pulls the center less than an average would", func(t *testing.T) {
		cluster := []Coordinates{
			{Latitude: 46.770, Longitude: 23.600},
			{Latitude: 46.771, Longitude: 23.601},
			{Latitude: 46.770, Longitude: 23.602},
			{Latitude: 46.769, Longitude: 23.601},
		}
		outlier := Coordinates{Latitude: 46.90, Longitude: 23.90}
		center, err := DensityCenter(append(cluster, outlier))
		if err != nil {
			t.Fatalf("DensityCenter() error = %v", err)
		}

		var meanLat, meanLon float64
		for _, point := range append(cluster, outlier) {
			meanLat += point.Latitude
			meanLon += point.Longitude
		}
		meanLat /= 5
		meanLon /= 5

		clusterMiddle := Coordinates{Latitude: 46.770, Longitude: 23.601}
		if HaversineMeters(center, clusterMiddle) >=
			HaversineMeters(Coordinates{Latitude: meanLat, Longitude: meanLon}, clusterMiddle) {
			t.Errorf("center %+v is no closer to the cluster than the plain average", center)
		}
	})
}

func Test_HaversineMeters(t *testing.T) {
	tests := []struct {
		name      string
		a         Coordinates
		b         Coordinates
		want      float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Coordinates{Latitude: 46.77, Longitude: 23.60},
			b:         Coordinates{Latitude: 46.77, Longitude: 23.60},
			want:      0,
			tolerance: 0.001,
		},
		{
			name:      "one degree of latitude",
			a:         Coordinates{Latitude: 46.0, Longitude: 23.60},
			b:         Coordinates{Latitude: 47.0, Longitude: 23.60},
			want:      111194.9,
			tolerance: 1.0,
		},
		{
			name:      "one kilometer north",
			a:         Coordinates{Latitude: 46.77, Longitude: 23.60},
			b:         Coordinates{Latitude: 46.77899321, Longitude: 23.60},
			want:      1000.0,
			tolerance: 1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineMeters() = %f, want %f", got, tt.want)
			}
			reversed := HaversineMeters(tt.b, tt.a)
			if got != reversed {
				t.Errorf("HaversineMeters() is not symmetric: %f vs %f", got, reversed)
			}
		})
	}
}
