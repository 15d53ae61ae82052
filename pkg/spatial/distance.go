package spatial

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const EarthRadiusMeters = 6371000.0 // mean radius

// DistanceMeters is the great-circle distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Circle is a spherical cap around a centre, sized in metres.
type Circle struct {
	cap s2.Cap
}

func NewCircle(lat, lon, radiusMeters float64) Circle {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	angle := s1.Angle(radiusMeters / EarthRadiusMeters)
	return Circle{cap: s2.CapFromCenterAngle(center, angle)}
}

func (c Circle) Contains(lat, lon float64) bool {
	return c.cap.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
}
