package index

import (
	"context"
	"database/sql"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// maxRecommendations caps how many entries a recommendation returns
const maxRecommendations = 5

// joinTriggers flattens trigger phrases for storage
func joinTriggers(triggers []string) string {
	return strings.Join(triggers, "\n")
}

// SplitTriggers restores the trigger phrases of an entry
func SplitTriggers(stored string) []string {
	if stored == "" {
		return nil
	}
	return strings.Split(stored, "\n")
}

// List returns catalog entries, optionally filtered by type, sorted by name
func (s *Store) List(ctx context.Context, entryType string) ([]Entry, error) {
	var entries []Entry
	var err error

	if entryType == "" {
		err = s.db.SelectContext(ctx, &entries,
			"SELECT * FROM entries ORDER BY entry_type, name")
	} else {
		err = s.db.SelectContext(ctx, &entries,
			"SELECT * FROM entries WHERE entry_type = ? ORDER BY name", entryType)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list catalog entries")
	}
	return entries, nil
}

// Get returns the entry of the given type and name
func (s *Store) Get(ctx context.Context, entryType, name string) (*Entry, error) {
	var entry Entry
	err := s.db.GetContext(ctx, &entry,
		"SELECT * FROM entries WHERE entry_type = ? AND name = ?", entryType, name)
	if err == sql.ErrNoRows {
		return nil, errors.Errorf("%s '%s' not found in catalog", entryType, name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get catalog entry")
	}
	return &entry, nil
}

// Search returns entries whose name, description, or triggers contain the
// query, case-insensitively, sorted by name.
func (s *Store) Search(ctx context.Context, query string) ([]Entry, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var entries []Entry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT * FROM entries
		WHERE lower(name) LIKE ? ESCAPE '\'
		   OR lower(description) LIKE ? ESCAPE '\'
		   OR lower(triggers) LIKE ? ESCAPE '\'
		ORDER BY name
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search catalog")
	}
	return entries, nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// Recommendation pairs a catalog entry with its relevance score for a task
type Recommendation struct {
	Entry Entry `json:"entry"`
	Score int   `json:"score"`
}

var keywordPattern = regexp.MustCompile(`[a-z0-9]+`)

// taskKeywords extracts the distinct lowercase keywords of a task
// description, dropping words too short to be meaningful.
func taskKeywords(task string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, word := range keywordPattern.FindAllString(strings.ToLower(task), -1) {
		if len(word) < 3 || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

// Recommend scores skills against a task description. A skill's score is
// the number of distinct task keywords appearing in its name, description,
// or triggers. Only skills with a positive score are returned, best first,
// ties broken by name, at most five results.
func (s *Store) Recommend(ctx context.Context, task string) ([]Recommendation, error) {
	keywords := taskKeywords(task)
	if len(keywords) == 0 {
		return nil, nil
	}

	entries, err := s.List(ctx, EntryTypeSkill)
	if err != nil {
		return nil, err
	}

	var recommendations []Recommendation
	for _, entry := range entries {
		haystack := strings.ToLower(entry.Name + " " + entry.Description + " " + entry.Triggers)

		score := 0
		for _, keyword := range keywords {
			if strings.Contains(haystack, keyword) {
				score++
			}
		}
		if score > 0 {
			recommendations = append(recommendations, Recommendation{Entry: entry, Score: score})
		}
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].Entry.Name < recommendations[j].Entry.Name
	})

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	return recommendations, nil
}

// Status describes the current state of the catalog
type Status struct {
	EntryCounts map[string]int `json:"entryCounts"`
	TotalCount  int            `json:"totalCount"`
	StaleCount  int            `json:"staleCount"`
	LastRun     *Run           `json:"lastRun,omitempty"`
}

// Status reports entry counts by type, how many entries have changed on disk
// since they were indexed, and the most recent rebuild
func (s *Store) Status(ctx context.Context) (*Status, error) {
	entries, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	status := &Status{EntryCounts: make(map[string]int)}
	for _, entry := range entries {
		status.EntryCounts[entry.Type]++
		status.TotalCount++
		if entry.Stale() {
			status.StaleCount++
		}
	}

	var run Run
	err = s.db.GetContext(ctx, &run,
		"SELECT * FROM index_runs ORDER BY completed_at DESC LIMIT 1")
	if err == nil {
		status.LastRun = &run
	} else if err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to get last index run")
	}

	return status, nil
}
