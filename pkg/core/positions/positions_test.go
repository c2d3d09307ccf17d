package positions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

func testPositions() []model.Position {
	return []model.Position{
		{Name: "Vocals"},
		{Name: "BackupVocals", ParentID: "Vocals"},
		{Name: "HarmonyVocals", ParentID: "Vocals"},
		{Name: "Drums"},
		{Name: "Percussion", ParentID: "Drums"},
	}
}

func TestGroup_HeadWithChildren(t *testing.T) {
	group := Group(testPositions(), "Vocals")
	assert.Equal(t, []string{"Vocals", "BackupVocals", "HarmonyVocals"}, group)
}

func TestGroup_HeadWithoutChildren(t *testing.T) {
	all := []model.Position{{Name: "Sound"}, {Name: "Projection"}}
	assert.Equal(t, []string{"Sound"}, Group(all, "Sound"))
}

func TestGroup_ChildIsSingleElementGroup(t *testing.T) {
	// A child passed directly cycles on its own - the hierarchy is one
	// level deep and children have no children of their own.
	group := Group(testPositions(), "BackupVocals")
	assert.Equal(t, []string{"BackupVocals"}, group)
}

func TestGroup_UnknownNameStillReturnsItself(t *testing.T) {
	group := Group(testPositions(), "Keys")
	assert.Equal(t, []string{"Keys"}, group)
}

func TestGroup_ChildOrderFollowsPositionList(t *testing.T) {
	all := []model.Position{
		{Name: "Second", ParentID: "Head"},
		{Name: "Head"},
		{Name: "First", ParentID: "Head"},
	}
	// Order is the order children appear in the list, not alphabetical.
	assert.Equal(t, []string{"Head", "Second", "First"}, Group(all, "Head"))
}

func TestFind(t *testing.T) {
	p, ok := Find(testPositions(), "Drums")
	assert.True(t, ok)
	assert.Equal(t, "Drums", p.Name)

	_, ok = Find(testPositions(), "Keys")
	assert.False(t, ok)
}
