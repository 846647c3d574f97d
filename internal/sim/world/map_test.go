package world

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/sailsim/internal/core/models"
	"github.com/zeusync/sailsim/internal/core/systems/physics"
)

func square(x, y, side float64) Landmass {
	return Landmass{Coastline: []physics.Vec2{
		physics.V2(x, y), physics.V2(x+side, y), physics.V2(x+side, y+side), physics.V2(x, y+side),
	}}
}

func testMap(t *testing.T) *Map {
	t.Helper()
	m := &Map{
		Size:  [2]int{1000, 1000},
		Start: physics.V2(10, 10),
		End:   physics.V2(900, 900),
	}
	m.Landmasses.Insert(square(100, 100, 50))
	island := square(400, 400, 100)
	island.Label = &Label{Name: "Gull Rock", At: physics.V2(450, 450)}
	require.NoError(t, m.Landmasses.InsertRef(models.NewRef[Landmass](7).WithAlias("gull"), island))
	return m
}

func TestLandmassContains(t *testing.T) {
	l := square(0, 0, 10)
	assert.True(t, l.Contains(physics.V2(5, 5)))
	assert.False(t, l.Contains(physics.V2(15, 5)))
	assert.False(t, l.Contains(physics.V2(-1, -1)))

	// Concave: an L shape.
	ell := Landmass{Coastline: []physics.Vec2{
		physics.V2(0, 0), physics.V2(10, 0), physics.V2(10, 4),
		physics.V2(4, 4), physics.V2(4, 10), physics.V2(0, 10),
	}}
	assert.True(t, ell.Contains(physics.V2(2, 8)))
	assert.False(t, ell.Contains(physics.V2(8, 8)))

	assert.False(t, Landmass{Coastline: []physics.Vec2{{}, {X: 1}}}.Contains(physics.V2(0.5, 0)))
}

func TestMapLandAt(t *testing.T) {
	m := testMap(t)
	require.NoError(t, m.Validate())

	ref, ok := m.LandAt(physics.V2(450, 420))
	require.True(t, ok)
	assert.True(t, ref.Matches(models.ByAlias[Landmass]("gull")))

	assert.True(t, m.OnLand(physics.V2(120, 120)))
	assert.False(t, m.OnLand(physics.V2(300, 300)))
}

func TestMapFinished(t *testing.T) {
	m := testMap(t)
	assert.True(t, m.Finished(physics.V2(905, 905)))
	assert.False(t, m.Finished(physics.V2(850, 850)))

	m.EndRadius = 100
	assert.True(t, m.Finished(physics.V2(850, 850)))
}

func TestMapValidate(t *testing.T) {
	m := testMap(t)
	m.Start = physics.V2(120, 120)
	assert.ErrorIs(t, m.Validate(), ErrInvalidMap)

	m = testMap(t)
	m.Size = [2]int{0, 10}
	assert.ErrorIs(t, m.Validate(), ErrInvalidMap)

	m = testMap(t)
	m.Landmasses.Insert(Landmass{Coastline: []physics.Vec2{{}, {X: 1}}})
	assert.ErrorIs(t, m.Validate(), ErrInvalidMap)
}

func TestMapDecodeYAML(t *testing.T) {
	doc := `
size: [200, 100]
start: {x: 5, y: 5}
end: {x: 190, y: 90}
landmasses:
  items:
    - ref: {id: 0, alias: reef}
      value:
        coastline: [{x: 50, y: 0}, {x: 60, y: 0}, {x: 60, y: 50}]
        color: [120, 100, 60, 255]
`
	var m Map
	require.NoError(t, yaml.NewDecoder(strings.NewReader(doc)).Decode(&m))
	require.NoError(t, m.Validate())

	reef, ok := m.Landmasses.Find(models.ByAlias[Landmass]("reef"))
	require.True(t, ok)
	assert.Len(t, reef.Value.Coastline, 3)
	assert.Equal(t, [4]uint8{120, 100, 60, 255}, reef.Value.Color)
	assert.True(t, m.InBounds(physics.V2(100, 50)))
	assert.False(t, m.InBounds(physics.V2(201, 50)))
}

func TestLandmassCloneIsDeep(t *testing.T) {
	m := testMap(t)
	c := m.Landmasses.Clone()
	c.At(1).Value.Coastline[0] = physics.V2(-1, -1)
	c.At(1).Value.Label.Name = "renamed"

	assert.Equal(t, physics.V2(400, 400), m.Landmasses.At(1).Value.Coastline[0])
	assert.Equal(t, "Gull Rock", m.Landmasses.At(1).Value.Label.Name)
}
