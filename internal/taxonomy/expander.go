package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/store/model"
	"github.com/roboclean/ops-sync/pkg/metrics"
	"go.uber.org/zap"
)

var ErrLocationNotFound = errors.New("location not found")

// Result summarizes one expansion run for a location.
type Result struct {
	LocationID string       `json:"locationId"`
	Created    []model.Task `json:"created"`
	Skipped    int          `json:"skipped"`
	Errors     []TaskError  `json:"errors,omitempty"`
}

type TaskError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Expander materializes the location's Room → Target → Action tree into
// concrete Task records, written to the document store first (authoritative)
// and mirrored into the relational store best-effort.
type Expander struct {
	docs  docstore.Store
	store store.Store
}

func NewExpander(docs docstore.Store, s store.Store) *Expander {
	return &Expander{docs: docs, store: s}
}

// Expand walks the taxonomy under locationID and creates one task per
// action. An action that already has a task referencing it is skipped, so
// re-running against an unchanged hierarchy is a no-op. Actions whose type
// catalog entries are missing are skipped with a warning, never fatal.
func (e *Expander) Expand(ctx context.Context, locationID string) (Result, error) {
	log := zap.S().Named("taxonomy")
	result := Result{LocationID: locationID}

	location, err := e.docs.Get(ctx, docstore.CollectionLocations, locationID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return result, ErrLocationNotFound
		}
		return result, fmt.Errorf("loading location %s: %w", locationID, err)
	}
	locationName, _ := location["name"].(string)

	rooms, err := e.docs.Find(ctx, docstore.CollectionRooms, "locationId", locationID)
	if err != nil {
		return result, fmt.Errorf("loading rooms for %s: %w", locationID, err)
	}

	types := newTypeCache(e.docs)

	for _, room := range rooms {
		roomName, ok := types.displayName(ctx, docstore.CollectionRoomTypes, room, "roomTypeId")
		if !ok {
			log.Warnf("room %s has no resolvable room type, skipping subtree", room.ID())
			continue
		}

		targets, err := e.docs.Find(ctx, docstore.CollectionTargets, "roomId", room.ID())
		if err != nil {
			return result, fmt.Errorf("loading targets for room %s: %w", room.ID(), err)
		}

		for _, target := range targets {
			targetName, ok := types.displayName(ctx, docstore.CollectionTargetTypes, target, "targetTypeId")
			if !ok {
				log.Warnf("target %s has no resolvable target type, skipping subtree", target.ID())
				continue
			}

			actions, err := e.docs.Find(ctx, docstore.CollectionActions, "targetId", target.ID())
			if err != nil {
				return result, fmt.Errorf("loading actions for target %s: %w", target.ID(), err)
			}

			for _, action := range actions {
				actionType, ok := types.get(ctx, docstore.CollectionActionTypes, stringField(action, "actionTypeId"))
				if !ok {
					log.Warnf("action %s has no resolvable action type, skipping", action.ID())
					continue
				}

				existing, err := e.docs.Find(ctx, docstore.CollectionTasks, "actionId", action.ID())
				if err != nil {
					return result, fmt.Errorf("checking existing tasks for action %s: %w", action.ID(), err)
				}
				if len(existing) > 0 {
					result.Skipped++
					continue
				}

				task := e.composeTask(action, actionType, room, target, locationID, locationName, roomName, targetName)
				if err := e.writeTask(ctx, task); err != nil {
					result.Errors = append(result.Errors, TaskError{ID: task.ID, Message: err.Error()})
					continue
				}
				result.Created = append(result.Created, task)
			}
		}
	}

	metrics.IncreaseTasksExpandedMetric(len(result.Created))
	log.Infof("expanded location %s: created=%d skipped=%d failed=%d",
		locationID, len(result.Created), result.Skipped, len(result.Errors))
	return result, nil
}

// composeTask resolves the naming rule and override-then-default precedence
// for one action.
func (e *Expander) composeTask(action, actionType, room, target docstore.Document, locationID, locationName, roomName, targetName string) model.Task {
	actionName := stringField(actionType, "name")

	description := stringField(action, "customInstructions")
	if description == "" {
		description = stringField(actionType, "defaultInstructions")
	}

	duration := intField(action, "customDurationMinutes")
	if duration == 0 {
		duration = intField(actionType, "defaultDurationMinutes")
	}

	roomID := room.ID()
	targetID := target.ID()
	actionID := action.ID()
	now := time.Now().UTC()

	return model.Task{
		ID:                       uuid.NewString(),
		Title:                    fmt.Sprintf("%s %s %s", actionName, roomName, targetName),
		Description:              description,
		Category:                 stringField(actionType, "category"),
		Status:                   model.TaskStatusAvailable,
		LocationID:               locationID,
		LocationName:             locationName,
		EstimatedDurationMinutes: duration,
		RoomID:                   &roomID,
		TargetID:                 &targetID,
		ActionID:                 &actionID,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// writeTask writes the document store copy first; it is authoritative, so a
// relational upsert failure is demoted to a log line.
func (e *Expander) writeTask(ctx context.Context, task model.Task) error {
	doc := docstore.Document{
		"id":                       task.ID,
		"title":                    task.Title,
		"description":              task.Description,
		"category":                 task.Category,
		"status":                   task.Status,
		"locationId":               task.LocationID,
		"roomId":                   *task.RoomID,
		"targetId":                 *task.TargetID,
		"actionId":                 *task.ActionID,
		"estimatedDurationMinutes": task.EstimatedDurationMinutes,
		"createdAt":                task.CreatedAt,
		"updatedAt":                task.UpdatedAt,
		"changedAt":                task.UpdatedAt,
	}
	if err := e.docs.Insert(ctx, docstore.CollectionTasks, doc); err != nil {
		return err
	}

	if _, err := e.store.Task().Upsert(ctx, task); err != nil {
		zap.S().Named("taxonomy").Warnf("task %s created but relational upsert failed, replication will catch up: %v", task.ID, err)
	}
	return nil
}

// typeCache memoizes type catalog lookups for one expansion run.
type typeCache struct {
	docs  docstore.Store
	cache map[string]docstore.Document
}

func newTypeCache(docs docstore.Store) *typeCache {
	return &typeCache{docs: docs, cache: make(map[string]docstore.Document)}
}

func (c *typeCache) get(ctx context.Context, collection, id string) (docstore.Document, bool) {
	if id == "" {
		return nil, false
	}
	key := collection + "/" + id
	if doc, ok := c.cache[key]; ok {
		return doc, doc != nil
	}
	doc, err := c.docs.Get(ctx, collection, id)
	if err != nil {
		c.cache[key] = nil
		return nil, false
	}
	c.cache[key] = doc
	return doc, true
}

// displayName resolves a node's display name: custom name override first,
// then its type's default name.
func (c *typeCache) displayName(ctx context.Context, typeCollection string, node docstore.Document, typeKey string) (string, bool) {
	if custom := stringField(node, "customName"); custom != "" {
		return custom, true
	}
	typeDoc, ok := c.get(ctx, typeCollection, stringField(node, typeKey))
	if !ok {
		return "", false
	}
	if name := stringField(typeDoc, "name"); name != "" {
		return name, true
	}
	return "", false
}

func stringField(doc docstore.Document, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func intField(doc docstore.Document, key string) int {
	switch v := doc[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
