package boat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sailsim/internal/core/models"
)

func namedSails(t *testing.T) models.Dataset[SailState] {
	t.Helper()
	sails := models.NewDataset[SailState]()
	require.NoError(t, sails.InsertRef(models.NewRef[SailState](1).WithAlias("main"), DefaultSailState()))
	require.NoError(t, sails.InsertRef(models.NewRef[SailState](2).WithAlias("jib"), DefaultSailState()))
	return sails
}

func TestInputsMergeNewerWins(t *testing.T) {
	sails := namedSails(t)
	in := Inputs{
		Rudder:   RudderInput(5),
		Sheeting: []SheetingTarget{{Sail: models.ByID[SailState](1), Angle: 40}},
	}

	missed := in.Merge(Inputs{
		Sheeting: []SheetingTarget{
			{Sail: models.ByAlias[SailState]("main"), Angle: 20},
			{Sail: models.ByAlias[SailState]("jib"), Angle: 60},
		},
	}, &sails)
	require.Empty(t, missed)

	require.NotNil(t, in.Rudder)
	assert.Equal(t, 5.0, *in.Rudder)
	assert.Equal(t, []SheetingTarget{
		{Sail: models.ByID[SailState](1), Angle: 20},
		{Sail: models.ByID[SailState](2), Angle: 60},
	}, in.Sheeting)

	in.Merge(Inputs{Rudder: RudderInput(-12)}, &sails)
	assert.Equal(t, -12.0, *in.Rudder)
	assert.Len(t, in.Sheeting, 2)
}

func TestInputsMergeReportsUnknownSails(t *testing.T) {
	sails := namedSails(t)
	var in Inputs

	missed := in.Merge(Inputs{Sheeting: []SheetingTarget{
		{Sail: models.ByAlias[SailState]("spinnaker"), Angle: 70},
		{Sail: models.ByID[SailState](2), Angle: 10},
	}}, &sails)

	assert.Equal(t, []models.Query[SailState]{models.ByAlias[SailState]("spinnaker")}, missed)
	assert.Len(t, in.Sheeting, 1)
	assert.False(t, in.IsZero())
}

func TestInputsMergeReportsQueuedTargetsForLostSails(t *testing.T) {
	sails := namedSails(t)
	in := Inputs{Sheeting: []SheetingTarget{
		{Sail: models.ByID[SailState](2), Angle: 45},
		{Sail: models.ByID[SailState](1), Angle: 30},
	}}
	require.True(t, sails.Remove(models.ByAlias[SailState]("jib")))

	missed := in.Merge(Inputs{}, &sails)

	assert.Equal(t, []models.Query[SailState]{models.ByID[SailState](2)}, missed)
	assert.Equal(t, []SheetingTarget{{Sail: models.ByID[SailState](1), Angle: 30}}, in.Sheeting)
}

func TestInputsApplyPullsInSail(t *testing.T) {
	s := State{Sails: namedSails(t)}
	s.Sails.At(0).Value.Angle = -70
	s.Sails.At(0).Value.Swing = 3

	in := Inputs{Sheeting: []SheetingTarget{{Sail: models.ByID[SailState](1), Angle: -25}}}
	in.apply(&s, DefaultMaxRudderAngle, -1)

	main := s.Sails.At(0).Value
	assert.Equal(t, 25.0, main.SheetingAngle)
	assert.Equal(t, -25.0, main.Angle)
	assert.Zero(t, main.Swing)
	assert.True(t, in.IsZero())
}
