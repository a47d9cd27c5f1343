package dump

import (
	"regexp"
	"strings"
)

// TableKind identifies which record decoder a section routes to
type TableKind int

const (
	TableUnknown TableKind = iota
	TableUser
	TableAgent
	TableSpatialObject

	numTableKinds
)

func (k TableKind) String() string {
	switch k {
	case TableUser:
		return "user"
	case TableAgent:
		return "agent"
	case TableSpatialObject:
		return "spatial_object"
	default:
		return "unknown"
	}
}

// TableKinds lists the known table kinds in declaration order
var TableKinds = []TableKind{TableUser, TableAgent, TableSpatialObject}

// TableNames holds the dump table name for each known kind
type TableNames struct {
	User          string `yaml:"user" validate:"required"`
	Agent         string `yaml:"agent" validate:"required"`
	SpatialObject string `yaml:"spatial_object" validate:"required"`
}

// DefaultTableNames are the table names written by the game server's export
var DefaultTableNames = TableNames{
	User:          "auth_user",
	Agent:         "dominion_player",
	SpatialObject: "dominion_planet",
}

// Resolve maps a table name from a COPY directive to its kind
func (n TableNames) Resolve(name string) TableKind {
	switch normalizeTableName(name) {
	case "":
		return TableUnknown
	case normalizeTableName(n.User):
		return TableUser
	case normalizeTableName(n.Agent):
		return TableAgent
	case normalizeTableName(n.SpatialObject):
		return TableSpatialObject
	}
	return TableUnknown
}

// Sentinel is the line that ends every table section
const Sentinel = `\.`

var copyDirective = regexp.MustCompile(`^COPY\s+([^\s(]+)`)

// ParseDirective returns the table name of a "COPY <name> ..." line
func ParseDirective(line string) (string, bool) {
	m := copyDirective.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// normalizeTableName drops a schema qualifier and identifier quotes,
// so public."dominion_planet" resolves like dominion_planet
func normalizeTableName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.Trim(name, `"`)
}
