// Package proximity finds the targets a drawn point is close to.
package proximity

import "github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"

// DefaultRadius is the attraction distance in canvas pixels.
const DefaultRadius = 30.0

// Candidate is a target region, usually an element card, by its centre.
type Candidate struct {
	ID     string
	Center geom.Point
}

// FindNearby returns the ids of every candidate within radius of p,
// in candidate order. The candidate count is small, so a linear scan it is.
func FindNearby(p geom.Point, candidates []Candidate, radius float64) []string {
	var ids []string
	for _, c := range candidates {
		if p.Distance(c.Center) <= radius {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
