package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/index"
	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/skills"
)

// exitCodeError carries a process exit code up to main through cobra's error
// return, so deferred cleanup and PersistentPostRun hooks are not bypassed by
// a mid-command os.Exit.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// newDiscoveries builds the skill and plugin discovery pair with default
// directories
func newDiscoveries() (*skills.Discovery, *plugins.Discovery, error) {
	skillDiscovery, err := skills.NewDiscovery()
	if err != nil {
		return nil, nil, err
	}
	pluginDiscovery, err := plugins.NewDiscovery()
	if err != nil {
		return nil, nil, err
	}
	return skillDiscovery, pluginDiscovery, nil
}

// openFreshStore opens the default catalog and rebuilds it when it has never
// been populated, so read commands work without an explicit index rebuild.
func openFreshStore(ctx context.Context) (*index.Store, error) {
	store, err := index.OpenDefault(ctx)
	if err != nil {
		return nil, err
	}

	status, err := store.Status(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if status.TotalCount > 0 {
		return store, nil
	}

	skillDiscovery, pluginDiscovery, err := newDiscoveries()
	if err != nil {
		store.Close()
		return nil, err
	}
	entries, err := index.CollectEntries(ctx, skillDiscovery, pluginDiscovery)
	if err != nil {
		store.Close()
		return nil, err
	}
	if _, err := store.Rebuild(ctx, entries); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// parseKeyValues splits repeated k=v flags into a map
func parseKeyValues(pairs []string) (map[string]string, error) {
	args := make(map[string]string)
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, errors.Errorf("invalid argument %q: expected key=value", pair)
		}
		args[key] = value
	}
	return args, nil
}
