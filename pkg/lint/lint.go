// Package lint audits skill bundles: frontmatter contract, naming rules,
// body hygiene, and bundled resources. Each skill receives a 0-10 score and
// the aggregate drives the process exit code.
package lint

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/skillet-cli/skillet/pkg/logger"
)

// Severity classifies a lint issue
type Severity string

// Issue severities
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Exit codes for the lint command
const (
	ExitClean    = 0
	ExitWarnings = 1
	ExitErrors   = 2
)

const (
	maxNameLength     = 64
	minDescriptionLen = 20
	maxBodyWords      = 5000
	errorDeduction    = 3
	warningDeduction  = 1
	maxScore          = 10
	skillFileName     = "SKILL.md"
)

// Issue is a single finding against a skill bundle
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report is the audit result for one skill bundle
type Report struct {
	Name      string  `json:"name"`
	Directory string  `json:"directory"`
	Score     int     `json:"score"`
	Issues    []Issue `json:"issues"`
}

// Summary aggregates reports across all audited bundles
type Summary struct {
	Reports  []Report `json:"reports"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
}

// ExitCode maps the summary onto the lint exit code convention:
// 2 for any error, 1 for warnings only, 0 when clean.
func (s *Summary) ExitCode() int {
	if s.Errors > 0 {
		return ExitErrors
	}
	if s.Warnings > 0 {
		return ExitWarnings
	}
	return ExitClean
}

var (
	kebabCasePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	todoPattern      = regexp.MustCompile(`(?i)\b(TODO|FIXME)\b`)
	baseDirPattern   = regexp.MustCompile(`\{baseDir\}/([A-Za-z0-9._/-]+)`)
	frontmatterSplit = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n?`)
)

// frontmatter mirrors the SKILL.md contract for audit purposes. Decoded with
// yaml.v3 directly so parse failures surface as issues rather than skips.
type frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version"`
	Triggers    []string `yaml:"triggers"`
}

// AuditTree audits every skill bundle under root. If root itself contains a
// SKILL.md it is audited as a single bundle. Unreadable bundles are collected
// into the returned error but never abort the remaining audits.
func AuditTree(ctx context.Context, root string) (*Summary, error) {
	var dirs []string

	if _, err := os.Stat(filepath.Join(root, skillFileName)); err == nil {
		dirs = append(dirs, root)
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read directory %s", root)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				dirs = append(dirs, filepath.Join(root, entry.Name()))
			}
		}
	}

	sort.Strings(dirs)

	summary := &Summary{}
	var scanErrs *multierror.Error

	for _, dir := range dirs {
		report, err := AuditSkillDir(ctx, dir)
		if err != nil {
			scanErrs = multierror.Append(scanErrs, errors.Wrapf(err, "failed to audit %s", dir))
			continue
		}

		summary.Reports = append(summary.Reports, *report)
		for _, issue := range report.Issues {
			switch issue.Severity {
			case SeverityError:
				summary.Errors++
			case SeverityWarning:
				summary.Warnings++
			}
		}
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"bundles":  len(summary.Reports),
		"errors":   summary.Errors,
		"warnings": summary.Warnings,
	}).Debug("lint complete")

	return summary, scanErrs.ErrorOrNil()
}

// AuditSkillDir audits a single skill bundle directory
func AuditSkillDir(ctx context.Context, dir string) (*Report, error) {
	report := &Report{
		Name:      filepath.Base(dir),
		Directory: dir,
	}

	skillPath := filepath.Join(dir, skillFileName)
	content, err := os.ReadFile(skillPath)
	if os.IsNotExist(err) {
		report.addIssue(SeverityError, "missing "+skillFileName)
		report.finalize()
		return report, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	fm, body, ok := splitFrontmatter(string(content))
	if !ok {
		report.addIssue(SeverityError, "missing frontmatter")
		report.finalize()
		return report, nil
	}

	var meta frontmatter
	if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
		report.addIssue(SeverityError, "unparseable frontmatter: "+err.Error())
		report.finalize()
		return report, nil
	}

	auditMetadata(report, &meta, filepath.Base(dir))
	auditBody(report, body, dir)
	auditResources(report, dir)

	report.finalize()
	return report, nil
}

func auditMetadata(report *Report, meta *frontmatter, dirName string) {
	if meta.Name == "" {
		report.addIssue(SeverityError, "name is required in frontmatter")
	} else {
		if meta.Name != dirName {
			report.addIssue(SeverityError, "name '"+meta.Name+"' does not match directory name '"+dirName+"'")
		}
		if !kebabCasePattern.MatchString(meta.Name) {
			report.addIssue(SeverityError, "name '"+meta.Name+"' is not kebab-case")
		}
		if len(meta.Name) > maxNameLength {
			report.addIssue(SeverityError, "name exceeds 64 characters")
		}
	}

	switch {
	case meta.Description == "":
		report.addIssue(SeverityError, "description is required in frontmatter")
	case todoPattern.MatchString(meta.Description):
		report.addIssue(SeverityError, "description contains a TODO placeholder")
	case len(meta.Description) < minDescriptionLen:
		report.addIssue(SeverityWarning, "description is shorter than 20 characters")
	}

	if len(meta.Triggers) == 0 {
		report.addIssue(SeverityInfo, "no triggers declared")
	}
}

func auditBody(report *Report, body, dir string) {
	if words := len(strings.Fields(body)); words > maxBodyWords {
		report.addIssue(SeverityWarning, "body exceeds 5000 words")
	}

	if todoPattern.MatchString(body) {
		report.addIssue(SeverityWarning, "body contains TODO/FIXME placeholders")
	}

	for _, match := range baseDirPattern.FindAllStringSubmatch(body, -1) {
		rel := match[1]
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			report.addIssue(SeverityWarning, "referenced resource does not exist: "+rel)
		}
	}
}

func auditResources(report *Report, dir string) {
	for _, subdir := range []string{"scripts", "references", "assets"} {
		path := filepath.Join(dir, subdir)
		entries, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		if len(entries) == 0 {
			report.addIssue(SeverityWarning, "empty "+subdir+" directory")
		}

		if subdir != "scripts" {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.Mode()&0o111 == 0 {
				report.addIssue(SeverityWarning, "script is not executable: scripts/"+entry.Name())
			}
		}
	}
}

// splitFrontmatter separates the YAML frontmatter block from the body
func splitFrontmatter(content string) (fm, body string, ok bool) {
	match := frontmatterSplit.FindStringSubmatch(content)
	if match == nil {
		return "", "", false
	}
	return match[1], content[len(match[0]):], true
}

func (r *Report) addIssue(severity Severity, message string) {
	r.Issues = append(r.Issues, Issue{Severity: severity, Message: message})
}

// finalize computes the deduction-table score: 3 points per error, 1 per
// warning, floored at zero.
func (r *Report) finalize() {
	score := maxScore
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityError:
			score -= errorDeduction
		case SeverityWarning:
			score -= warningDeduction
		}
	}
	if score < 0 {
		score = 0
	}
	r.Score = score
}
