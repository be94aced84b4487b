// Package scaffold creates new skill bundles from a built-in template.
package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

const skillFileName = "SKILL.md"

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const skillTemplate = `---
name: {{.Name}}
description: Describe when an assistant should reach for this skill
triggers:
  - {{.FirstTrigger}}
---

# {{.Title}}

## When to use

Describe the situations this skill applies to.

## Instructions

1. Outline the steps here.
{{- if .WithScripts}}
2. Run ` + "`{baseDir}/scripts/example.sh`" + ` as needed.
{{- end}}
`

const exampleScript = `#!/usr/bin/env bash
set -euo pipefail

echo "replace me"
`

// Options controls which skeleton directories the new bundle gets
type Options struct {
	Scripts    bool
	References bool
	Assets     bool
}

// ValidateName enforces the kebab-case naming rule shared with lint
func ValidateName(name string) error {
	if name == "" {
		return errors.New("skill name cannot be empty")
	}
	if len(name) > 64 {
		return errors.Errorf("skill name %q exceeds 64 characters", name)
	}
	if !namePattern.MatchString(name) {
		return errors.Errorf("skill name %q must be kebab-case (lowercase letters, digits, hyphens)", name)
	}
	return nil
}

// Create scaffolds a new skill bundle at parentDir/name. It refuses to touch
// an existing directory.
func Create(parentDir, name string, opts Options) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	skillDir := filepath.Join(parentDir, name)
	if _, err := os.Stat(skillDir); err == nil {
		return "", errors.Errorf("directory %s already exists", skillDir)
	}

	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create skill directory")
	}

	content, err := renderTemplate(name, opts)
	if err != nil {
		os.RemoveAll(skillDir)
		return "", err
	}

	if err := os.WriteFile(filepath.Join(skillDir, skillFileName), content, 0o644); err != nil {
		os.RemoveAll(skillDir)
		return "", errors.Wrap(err, "failed to write skill file")
	}

	if opts.Scripts {
		scriptsDir := filepath.Join(skillDir, "scripts")
		if err := os.MkdirAll(scriptsDir, 0o755); err != nil {
			return "", errors.Wrap(err, "failed to create scripts directory")
		}
		if err := os.WriteFile(filepath.Join(scriptsDir, "example.sh"), []byte(exampleScript), 0o755); err != nil {
			return "", errors.Wrap(err, "failed to write example script")
		}
	}
	if opts.References {
		if err := os.MkdirAll(filepath.Join(skillDir, "references"), 0o755); err != nil {
			return "", errors.Wrap(err, "failed to create references directory")
		}
	}
	if opts.Assets {
		if err := os.MkdirAll(filepath.Join(skillDir, "assets"), 0o755); err != nil {
			return "", errors.Wrap(err, "failed to create assets directory")
		}
	}

	return skillDir, nil
}

func renderTemplate(name string, opts Options) ([]byte, error) {
	tmpl, err := template.New("skill").Parse(skillTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse skill template")
	}

	data := struct {
		Name         string
		Title        string
		FirstTrigger string
		WithScripts  bool
	}{
		Name:         name,
		Title:        titleFromName(name),
		FirstTrigger: strings.ReplaceAll(name, "-", " "),
		WithScripts:  opts.Scripts,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "failed to render skill template")
	}
	return buf.Bytes(), nil
}

// titleFromName turns "git-commit" into "Git Commit"
func titleFromName(name string) string {
	words := strings.Split(name, "-")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
