package room

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		id   string
		want Category
	}{
		{"journey_abc123", CategoryGroupPlanning},
		{"location_12.5_-45.0", CategoryLocationChat},
		{"qa_j1_u2", CategoryQAChat},
		{"direct_u1_u2", CategoryDirect},
		{"u1_u2", CategoryDirect},
		{"general", CategoryDirect},
		{"", CategoryDirect},
		{"journey", CategoryDirect},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.id))
			// deterministic
			assert.Equal(t, CategoryOf(tt.id), CategoryOf(tt.id))
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("group planning", func(t *testing.T) {
		ref, err := Parse("journey_abc123")
		require.NoError(t, err)
		assert.Equal(t, CategoryGroupPlanning, ref.Category)
		require.NotNil(t, ref.GroupPlanning)
		assert.Equal(t, "abc123", ref.GroupPlanning.JourneyID)
		assert.Equal(t, "abc123", ref.JourneyID())
	})

	t.Run("location", func(t *testing.T) {
		ref, err := Parse("location_12.5_-45.0")
		require.NoError(t, err)
		assert.Equal(t, CategoryLocationChat, ref.Category)
		require.NotNil(t, ref.Location)
		assert.Equal(t, Coordinates{Lat: 12.5, Lon: -45.0}, ref.Location.Coordinates)
		assert.Empty(t, ref.JourneyID())
	})

	t.Run("qa", func(t *testing.T) {
		ref, err := Parse("qa_j1_u2")
		require.NoError(t, err)
		assert.Equal(t, CategoryQAChat, ref.Category)
		require.NotNil(t, ref.QA)
		assert.Equal(t, "j1", ref.QA.JourneyID)
		assert.Equal(t, "u2", ref.QA.AskerID)
		assert.Equal(t, "j1", ref.JourneyID())
	})

	t.Run("direct with prefix", func(t *testing.T) {
		ref, err := Parse("direct_alice_bob")
		require.NoError(t, err)
		assert.Equal(t, CategoryDirect, ref.Category)
		assert.Equal(t, []string{"alice", "bob"}, ref.Direct.Participants)
		assert.True(t, ref.Direct.HasParticipant("bob"))
		assert.Equal(t, "alice", ref.Direct.Other("bob"))
	})

	t.Run("direct without participants", func(t *testing.T) {
		ref, err := Parse("lobby")
		require.NoError(t, err)
		assert.Equal(t, CategoryDirect, ref.Category)
		assert.Empty(t, ref.Direct.Participants)
		assert.False(t, ref.Direct.HasParticipant("lobby"))
	})
}

func TestParseMalformed(t *testing.T) {
	ids := []string{
		"",
		"   ",
		"journey_",
		"location_12.5",
		"location_abc_def",
		"location_91_0",
		"location_0_181",
		"location_NaN_0",
		"qa_j1",
		"qa__u2",
		"qa_j1_",
	}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			_, err := Parse(id)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRoomID))
		})
	}
}

func TestDirectID(t *testing.T) {
	assert.Equal(t, "direct_alice_bob", DirectID("bob", "alice"))
	assert.Equal(t, DirectID("alice", "bob"), DirectID("bob", "alice"))

	ref, err := Parse(DirectID("u9", "u1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u9"}, ref.Direct.Participants)
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryQAChat.Valid())
	assert.False(t, Category("broadcast").Valid())
}
