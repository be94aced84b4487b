package index

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/logger"
	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/skills"
	"github.com/skillet-cli/skillet/pkg/telemetry"
)

// CollectEntries walks discovery output and produces catalog entries for
// every skill, command, and agent.
func CollectEntries(ctx context.Context, skillDiscovery *skills.Discovery, pluginDiscovery *plugins.Discovery) ([]Entry, error) {
	ctx, span := telemetry.Tracer("skillet.index").Start(ctx, "index.collect_entries")
	defer span.End()

	var entries []Entry

	discovered, err := skillDiscovery.DiscoverSkills(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover skills")
	}
	for _, skill := range discovered {
		entry := Entry{
			Type:        EntryTypeSkill,
			Name:        skill.Name,
			Description: skill.Description,
			Directory:   skill.Directory,
			Triggers:    joinTriggers(skill.Triggers),
			WordCount:   skill.WordCount(),
			Source:      skill.Source,
			ModTime:     fileModTime(filepath.Join(skill.Directory, skills.SkillFileName)),
		}
		if res, err := skill.Resources(); err == nil {
			entry.ScriptCount = len(res.Scripts)
		}
		entries = append(entries, entry)
	}

	commandItems, err := pluginDiscovery.DiscoverCommands(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover commands")
	}
	for _, item := range commandItems {
		entries = append(entries, itemEntry(item, EntryTypeCommand))
	}

	agentItems, err := pluginDiscovery.DiscoverAgents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover agents")
	}
	for _, item := range agentItems {
		entries = append(entries, itemEntry(item, EntryTypeAgent))
	}

	logger.G(ctx).WithField("entries", len(entries)).Debug("collected catalog entries")
	return entries, nil
}

func itemEntry(item *plugins.Item, entryType string) Entry {
	return Entry{
		Type:        entryType,
		Name:        item.Name,
		Description: item.Description,
		Directory:   item.Path,
		Source:      item.Source,
		ModTime:     fileModTime(item.Path),
	}
}

func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Rebuild atomically replaces the catalog contents with the given entries
// and records the run. Queries running concurrently see either the old or
// the new catalog, never a mix.
func (s *Store) Rebuild(ctx context.Context, entries []Entry) (*Run, error) {
	ctx, span := telemetry.Tracer("skillet.index").Start(ctx, "index.rebuild")
	defer span.End()

	startedAt := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin rebuild transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return nil, errors.Wrap(err, "failed to clear catalog")
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		entry.ID = uuid.NewString()
		entry.IndexedAt = now

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO entries (id, entry_type, name, description, directory, triggers,
				word_count, script_count, source, mod_time, indexed_at)
			VALUES (:id, :entry_type, :name, :description, :directory, :triggers,
				:word_count, :script_count, :source, :mod_time, :indexed_at)
		`, entry)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to insert entry %s/%s", entry.Type, entry.Name)
		}
	}

	run := Run{
		ID:          uuid.NewString(),
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
		EntryCount:  len(entries),
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO index_runs (id, started_at, completed_at, entry_count)
		VALUES (:id, :started_at, :completed_at, :entry_count)
	`, run)
	if err != nil {
		return nil, errors.Wrap(err, "failed to record index run")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit rebuild")
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"entries": len(entries),
		"run_id":  run.ID,
	}).Info("catalog rebuilt")

	return &run, nil
}
