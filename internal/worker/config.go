// Package worker provides background job processing for buurt-check.
package worker

import (
	"time"
)

// WarmTarget represents a geographic region whose risk pipelines are kept
// warm.
type WarmTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are RD (EPSG:28992) coordinates to sample.
	// Typically the centers of major cities.
	Points []Point

	// Priority determines warm order (lower = higher priority).
	Priority int
}

// Point represents a projected RD coordinate.
type Point struct {
	RDX float64
	RDY float64
}

// WarmConfig holds configuration for the pipeline warm job.
type WarmConfig struct {
	// Targets are the geographic regions to sample.
	// If empty, uses DefaultWarmTargets.
	Targets []WarmTarget

	// Concurrency is the number of concurrent sample operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each point.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultWarmConfig returns the default warm configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Targets:     DefaultWarmTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultWarmTargets returns the default warm targets for the Netherlands:
// the Randstad metropolitan area plus the larger regional cities. Sampling
// these keeps the per-upstream layer catalogs fresh and surfaces upstream
// degradation before user traffic does.
func DefaultWarmTargets() []WarmTarget {
	return []WarmTarget{
		{
			Name:     "Amsterdam",
			Priority: 1,
			Points: []Point{
				{RDX: 121842, RDY: 487373}, // Amsterdam Centraal
				{RDX: 119900, RDY: 483250}, // Amsterdam Zuid
				{RDX: 126200, RDY: 480800}, // Amsterdam Zuidoost
			},
		},
		{
			Name:     "Rotterdam",
			Priority: 1,
			Points: []Point{
				{RDX: 91870, RDY: 437930}, // Rotterdam Centraal
				{RDX: 92900, RDY: 435800}, // Rotterdam Zuid
			},
		},
		{
			Name:     "Den Haag",
			Priority: 1,
			Points: []Point{
				{RDX: 81720, RDY: 455170}, // Den Haag Centraal
				{RDX: 79800, RDY: 458500}, // Scheveningen
			},
		},
		{
			Name:     "Utrecht",
			Priority: 1,
			Points: []Point{
				{RDX: 136100, RDY: 455870}, // Utrecht Centraal
			},
		},
		{
			Name:     "Eindhoven",
			Priority: 2,
			Points: []Point{
				{RDX: 161420, RDY: 383800}, // Eindhoven Centraal
			},
		},
		{
			Name:     "Groningen",
			Priority: 2,
			Points: []Point{
				{RDX: 233290, RDY: 581860}, // Groningen
			},
		},
		{
			Name:     "Leiden",
			Priority: 3,
			Points: []Point{
				{RDX: 93400, RDY: 464000}, // Leiden Centraal
			},
		},
		{
			Name:     "Haarlem",
			Priority: 3,
			Points: []Point{
				{RDX: 103750, RDY: 488600}, // Haarlem
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c WarmConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to sample.
func (c WarmConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
