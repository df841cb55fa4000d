package docstore

import (
	"context"
	"errors"
)

// SeedDefaults inserts a starter type catalog for local development.
// Existing documents are left alone, so reseeding is safe.
func SeedDefaults(ctx context.Context, s Store) error {
	catalogs := map[string][]Document{
		CollectionRoomTypes: {
			{"id": "rt-kitchen", "name": "Kitchen"},
			{"id": "rt-bathroom", "name": "Bathroom"},
			{"id": "rt-office", "name": "Office"},
			{"id": "rt-hallway", "name": "Hallway"},
		},
		CollectionTargetTypes: {
			{"id": "tt-counter", "name": "Counter"},
			{"id": "tt-sink", "name": "Sink"},
			{"id": "tt-floor", "name": "Floor"},
			{"id": "tt-desk", "name": "Desk"},
			{"id": "tt-window", "name": "Window"},
		},
		CollectionActionTypes: {
			{"id": "at-wipe", "name": "Wipe", "category": "cleaning", "defaultDurationMinutes": 5},
			{"id": "at-mop", "name": "Mop", "category": "cleaning", "defaultDurationMinutes": 15},
			{"id": "at-vacuum", "name": "Vacuum", "category": "cleaning", "defaultDurationMinutes": 10},
			{"id": "at-disinfect", "name": "Disinfect", "category": "sanitation", "defaultDurationMinutes": 10,
				"defaultInstructions": "Apply disinfectant and let it sit for two minutes"},
			{"id": "at-inspect", "name": "Inspect", "category": "inspection", "defaultDurationMinutes": 5},
		},
	}

	for collection, docs := range catalogs {
		for _, doc := range docs {
			_, err := s.Get(ctx, collection, doc.ID())
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			if err := s.Insert(ctx, collection, doc); err != nil {
				return err
			}
		}
	}
	return nil
}
