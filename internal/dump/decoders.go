package dump

import (
	"math"
	"strconv"
	"strings"

	"dominion/internal/rgb"
	"dominion/internal/store"
)

// Minimum field counts per table. Rows with fewer fields are dropped.
const (
	userFields          = 2
	agentFields         = 4
	spatialObjectFields = 19
)

// Field positions of the spatial object row. Fields 8, 9 and 11-18 are
// present in the export but not read.
const (
	planetID          = 0
	planetName        = 1
	planetOwner       = 2
	planetSector      = 3
	planetX           = 4
	planetY           = 5
	planetRadius      = 6
	planetColor       = 7
	planetSensorRange = 10
)

// decode converts one row for kind. It returns false when the row is too
// short and was dropped.
func (p *Parser) decode(kind TableKind, fields []string) bool {
	switch kind {
	case TableUser:
		return p.decodeUser(fields)
	case TableAgent:
		return p.decodeAgent(fields)
	case TableSpatialObject:
		return p.decodeSpatialObject(fields)
	}
	return false
}

// decodeUser reads the user id and keeps nothing. The row still counts
// towards the section's row total.
func (p *Parser) decodeUser(fields []string) bool {
	if len(fields) < userFields {
		return false
	}
	p.logger.Debug("user row", "id", parseInt(fields[0]), "row", p.row)
	return true
}

func (p *Parser) decodeAgent(fields []string) bool {
	if len(fields) < agentFields {
		return false
	}
	p.store.AddAgent(store.Agent{
		ID:    parseInt(fields[1]),
		Color: rgb.FromHex(strings.TrimSpace(fields[3])),
	})
	return true
}

func (p *Parser) decodeSpatialObject(fields []string) bool {
	if len(fields) < spatialObjectFields {
		return false
	}
	p.store.AddObject(store.SpatialObject{
		ID:          parseInt(fields[planetID]),
		Name:        fields[planetName],
		OwnerID:     parseInt(fields[planetOwner]),
		SectorID:    parseInt(fields[planetSector]),
		X:           parseFloat(fields[planetX]),
		Y:           parseFloat(fields[planetY]),
		Radius:      parseFloat(fields[planetRadius]),
		Color:       rgb.ParsePacked(strings.TrimSpace(fields[planetColor])),
		SensorRange: parseFloat(fields[planetSensorRange]),
	})
	return true
}

// parseInt returns 0 for anything that is not a base-10 integer
func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// parseFloat returns 0 for anything that is not a finite number
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
