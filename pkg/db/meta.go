package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jakechorley/team-roster/pkg/core/model"
	"github.com/jakechorley/team-roster/pkg/docstore"
)

// teamsDoc is the singleton metadata document holding every team with its
// positions.
type teamsDoc struct {
	Teams []model.Team `json:"teams"`
}

// GetTeams fetches all teams. A missing metadata document yields an empty
// list, not an error.
func (d *DB) GetTeams(ctx context.Context) ([]model.Team, error) {
	data, err := d.store.Get(ctx, CollectionMeta, DocTeams)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}

	var doc teamsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}
	return doc.Teams, nil
}

// GetTeam fetches one team by name.
func (d *DB) GetTeam(ctx context.Context, name string) (model.Team, error) {
	teams, err := d.GetTeams(ctx)
	if err != nil {
		return model.Team{}, err
	}
	for _, team := range teams {
		if team.Name == name {
			return team, nil
		}
	}
	return model.Team{}, fmt.Errorf("team %q: %w", name, ErrNotFound)
}

// SaveTeams overwrites the teams metadata document.
func (d *DB) SaveTeams(ctx context.Context, teams []model.Team) error {
	data, err := json.Marshal(teamsDoc{Teams: teams})
	if err != nil {
		return fmt.Errorf("failed to encode teams: %w", err)
	}
	if err := d.store.Set(ctx, CollectionMeta, DocTeams, data); err != nil {
		return fmt.Errorf("failed to save teams: %w", err)
	}
	return nil
}
