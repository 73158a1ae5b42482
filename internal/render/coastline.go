package render

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Simplified coastlines of the tropical Atlantic, lon/lat degrees.
//
//go:embed data/coastlines.geojson
var coastlineData []byte

var loadCoastlines = sync.OnceValues(func() ([]orb.LineString, error) {
	return parseCoastlines(coastlineData)
})

func parseCoastlines(data []byte) ([]orb.LineString, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse coastlines: %w", err)
	}

	var lines []orb.LineString
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, g)
		case orb.MultiLineString:
			lines = append(lines, g...)
		case orb.Polygon:
			for _, ring := range g {
				lines = append(lines, orb.LineString(ring))
			}
		case orb.MultiPolygon:
			for _, p := range g {
				for _, ring := range p {
					lines = append(lines, orb.LineString(ring))
				}
			}
		}
	}
	return lines, nil
}

// coastlinesWithin returns the coastline segments whose bounds touch b.
func coastlinesWithin(b orb.Bound) ([]orb.LineString, error) {
	all, err := loadCoastlines()
	if err != nil {
		return nil, err
	}
	var out []orb.LineString
	for _, ls := range all {
		if ls.Bound().Intersects(b) {
			out = append(out, ls)
		}
	}
	return out, nil
}
