package dump

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dominion/internal/rgb"
	"dominion/internal/store"
)

// planetRow builds a 19 field spatial object row
func planetRow(id int, name string, owner, sector int, x, y float64, color uint32, sensor float64) string {
	fields := []string{
		fmt.Sprint(id), name, fmt.Sprint(owner), fmt.Sprint(sector),
		fmt.Sprint(x), fmt.Sprint(y), "5.0", fmt.Sprint(color),
		"0", "0", fmt.Sprint(sensor),
	}
	for len(fields) < spatialObjectFields {
		fields = append(fields, "f")
	}
	return strings.Join(fields, "\t")
}

func parseString(t *testing.T, input string) (*store.Store, *Parser, Stats) {
	t.Helper()
	st := store.New()
	p := NewParser(st, DefaultConfig())
	stats, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)
	return st, p, stats
}

func TestParseSingleSpatialObject(t *testing.T) {
	input := "COPY dominion_planet (id, name, owner_id) FROM stdin;\n" +
		"1\tAlpha\t0\t1\t10.0\t20.0\t5.0\t16711680\t0\t0\t3.0\ta\tb\tc\td\te\tf\tg\th\n" +
		"\\.\n"

	st, p, stats := parseString(t, input)

	objects := st.Objects()
	require.Len(t, objects, 1)
	o := objects[0]
	assert.Equal(t, 1, o.ID)
	assert.Equal(t, "Alpha", o.Name)
	assert.Equal(t, 0, o.OwnerID)
	assert.Equal(t, 1, o.SectorID)
	assert.Equal(t, 10.0, o.X)
	assert.Equal(t, 20.0, o.Y)
	assert.Equal(t, 5.0, o.Radius)
	assert.Equal(t, rgb.Color{R: 1, G: 0, B: 0}, o.Color)
	assert.Equal(t, 3.0, o.SensorRange)

	assert.Equal(t, Initial, p.State())
	assert.Equal(t, 1, stats.Sections[TableSpatialObject])
	assert.Equal(t, 1, stats.Decoded[TableSpatialObject])
}

func TestEmptySectionsReturnToInitial(t *testing.T) {
	for _, table := range []string{"auth_user", "dominion_player", "dominion_planet"} {
		t.Run(table, func(t *testing.T) {
			st, p, stats := parseString(t, "COPY "+table+" (id) FROM stdin;\n\\.\n")
			assert.Zero(t, st.AgentCount())
			assert.Zero(t, st.ObjectCount())
			assert.Equal(t, Initial, p.State())
			kind := DefaultTableNames.Resolve(table)
			assert.Equal(t, 1, stats.Sections[kind])
			assert.Zero(t, stats.Rows[kind])
		})
	}
}

func TestShortRowsAreDroppedWithoutLosingState(t *testing.T) {
	st := store.New()
	p := NewParser(st, DefaultConfig())

	p.ProcessLine("COPY dominion_planet FROM stdin;")
	require.Equal(t, State{Phase: PhaseInTable, Table: TableSpatialObject}, p.State())

	p.ProcessLine("1\tShort\t0")
	assert.Zero(t, st.ObjectCount())
	assert.Equal(t, State{Phase: PhaseInTable, Table: TableSpatialObject}, p.State())

	p.ProcessLine(planetRow(2, "Beta", 3, 4, 1, 2, 0x00ff00, 0))
	require.Equal(t, 1, st.ObjectCount())
	assert.Equal(t, "Beta", st.Objects()[0].Name)

	p.ProcessLine(Sentinel)
	assert.Equal(t, Initial, p.State())

	stats := p.Stats()
	assert.Equal(t, 2, stats.Rows[TableSpatialObject])
	assert.Equal(t, 1, stats.Dropped[TableSpatialObject])
	assert.Equal(t, 1, stats.Decoded[TableSpatialObject])
}

func TestAgentRows(t *testing.T) {
	input := strings.Join([]string{
		"COPY dominion_player (id, user_id, name, color) FROM stdin;",
		"1\t42\tkirk\t#0000FF",
		"2\t43\tspock\t#abc",
		"3\tnotanumber\tbones\t#00FF00",
		"5\t45\tscotty\t #FF0000 \t",
		"4\t44",
		`\.`,
	}, "\n")

	st, _, stats := parseString(t, input)

	agents := st.Agents()
	require.Len(t, agents, 4)
	assert.Equal(t, store.Agent{ID: 42, Color: rgb.Color{B: 1}}, agents[0])
	assert.Equal(t, store.Agent{ID: 43, Color: rgb.Black}, agents[1])
	assert.Equal(t, store.Agent{ID: 0, Color: rgb.Color{G: 1}}, agents[2])
	assert.Equal(t, store.Agent{ID: 45, Color: rgb.Color{R: 1}}, agents[3])
	assert.Equal(t, 1, stats.Dropped[TableAgent])
}

func TestUserRowsCountButStoreNothing(t *testing.T) {
	input := "COPY auth_user FROM stdin;\n7\tadmin\nbogus\n\\.\n"

	st, _, stats := parseString(t, input)

	assert.Zero(t, st.AgentCount())
	assert.Zero(t, st.ObjectCount())
	assert.Equal(t, 2, stats.Rows[TableUser])
	assert.Equal(t, 1, stats.Decoded[TableUser])
	assert.Equal(t, 1, stats.Dropped[TableUser])
}

func TestUnknownTableIsSkipped(t *testing.T) {
	input := strings.Join([]string{
		"COPY some_other_table (a, b) FROM stdin;",
		planetRow(1, "Fake", 0, 0, 1, 1, 1, 1),
		"COPY dominion_planet FROM stdin;",
		"anything",
		`\.`,
		"COPY dominion_planet FROM stdin;",
		planetRow(2, "Real", 0, 0, 1, 1, 1, 1),
		`\.`,
	}, "\n")

	st, p, stats := parseString(t, input)

	objects := st.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, "Real", objects[0].Name)
	assert.Equal(t, 3, stats.SkippedRows)
	assert.Equal(t, []string{"some_other_table"}, stats.UnknownTables)
	assert.Equal(t, Initial, p.State())
}

func TestPreambleIsIgnored(t *testing.T) {
	input := strings.Join([]string{
		"--",
		"-- PostgreSQL database dump",
		"SET client_encoding = 'UTF8';",
		`\.`,
		"",
		"COPY public.dominion_planet (id) FROM stdin;",
		planetRow(1, "Alpha", 0, 0, 1, 1, 1, 1),
		`\.`,
	}, "\n")

	st, _, stats := parseString(t, input)

	assert.Equal(t, 1, st.ObjectCount())
	assert.Zero(t, stats.SkippedRows)
	assert.Equal(t, 8, stats.Lines)
}

func TestNumericFieldsParseOrZero(t *testing.T) {
	row := strings.Join([]string{"x", "Odd", "y", "z", "east", "north", "r", "red", "0", "0", "far",
		"1", "1", "1", "1", "1", "1", "1", "1"}, "\t")
	st, _, _ := parseString(t, "COPY dominion_planet FROM stdin;\n"+row+"\n\\.\n")

	objects := st.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, store.SpatialObject{Name: "Odd", Color: rgb.Black}, objects[0])
}

func TestOversizedLineKeepsAlignment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LineCapacity = 64

	input := "COPY dominion_planet FROM stdin;\n" +
		strings.Repeat("x", 500) + "\n" +
		planetRow(5, "After", 1, 2, 3, 4, 0xff, 0) + "\n" +
		"\\.\n"

	st := store.New()
	p := NewParser(st, cfg)
	stats, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)

	objects := st.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, "After", objects[0].Name)
	assert.Equal(t, 1, stats.TruncatedLines)
	assert.Equal(t, 1, stats.Dropped[TableSpatialObject])
	assert.Equal(t, Initial, p.State())
}

func TestUnterminatedSectionResetsBetweenParses(t *testing.T) {
	st := store.New()
	p := NewParser(st, DefaultConfig())

	stats, err := p.Parse(strings.NewReader("COPY dominion_planet FROM stdin;\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unterminated)
	assert.Equal(t, Initial, p.State())

	_, err = p.Parse(strings.NewReader(planetRow(1, "Outside", 0, 0, 0, 0, 0, 0) + "\n"))
	require.NoError(t, err)
	assert.Zero(t, st.ObjectCount())
}

func TestInsertionOrderAcrossSections(t *testing.T) {
	input := strings.Join([]string{
		"COPY dominion_planet FROM stdin;",
		planetRow(3, "C", 0, 0, 0, 0, 0, 0),
		`\.`,
		"COPY dominion_player FROM stdin;",
		"1\t1\ta\t#FFFFFF",
		`\.`,
		"COPY dominion_planet FROM stdin;",
		planetRow(1, "A", 0, 0, 0, 0, 0, 0),
		planetRow(2, "B", 0, 0, 0, 0, 0, 0),
		`\.`,
	}, "\n")

	st, _, stats := parseString(t, input)

	var names []string
	for _, o := range st.Objects() {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)
	assert.Equal(t, 2, stats.Sections[TableSpatialObject])
}

func TestLatin1Encoding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoding = "LATIN1"
	row := planetRow(1, "Caf\xe9", 0, 0, 0, 0, 0, 0)

	st := store.New()
	_, err := NewParser(st, cfg).Parse(strings.NewReader("COPY dominion_planet FROM stdin;\n" + row + "\n\\.\n"))
	require.NoError(t, err)
	require.Equal(t, 1, st.ObjectCount())
	assert.Equal(t, "Café", st.Objects()[0].Name)
}

func TestUnknownEncoding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoding = "ebcdic"
	_, err := NewParser(store.New(), cfg).Parse(strings.NewReader(""))
	assert.Error(t, err)
}
