// Package commands renders command templates. A command is a markdown file
// with optional frontmatter whose body is a Go text/template; arguments are
// substituted as template variables and a bash helper allows embedding
// command output.
package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/logger"
	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/skills"
)

// bashTimeout bounds each embedded bash invocation during rendering
const bashTimeout = 30 * time.Second

// RenderConfig holds configuration for command rendering
type RenderConfig struct {
	CommandName string
	Arguments   map[string]string
}

// Renderer loads and renders command templates discovered through the plugin
// directory layout.
type Renderer struct {
	discovery *plugins.Discovery
}

// NewRenderer creates a command renderer on top of the given discovery
func NewRenderer(discovery *plugins.Discovery) *Renderer {
	return &Renderer{discovery: discovery}
}

// Render loads the named command and renders its body with the given
// arguments. Frontmatter is stripped before rendering.
func (r *Renderer) Render(ctx context.Context, config *RenderConfig) (string, error) {
	logger.G(ctx).WithField("command", config.CommandName).Debug("rendering command")

	item, err := r.Get(ctx, config.CommandName)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(item.Path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read command file '%s'", item.Path)
	}

	body := skills.ExtractBody(string(content))

	rendered, err := r.renderTemplate(ctx, body, config.Arguments)
	if err != nil {
		return "", errors.Wrapf(err, "failed to render command '%s'", config.CommandName)
	}

	return rendered, nil
}

// Get returns the named command or an error if it does not exist
func (r *Renderer) Get(ctx context.Context, name string) (*plugins.Item, error) {
	items, err := r.discovery.DiscoverCommands(ctx)
	if err != nil {
		return nil, err
	}

	item, ok := items[name]
	if !ok {
		return nil, errors.Errorf("command '%s' not found", name)
	}
	return item, nil
}

// List returns all discovered commands sorted by name
func (r *Renderer) List(ctx context.Context) ([]*plugins.Item, error) {
	items, err := r.discovery.DiscoverCommands(ctx)
	if err != nil {
		return nil, err
	}

	sorted := make([]*plugins.Item, 0, len(items))
	for _, item := range items {
		sorted = append(sorted, item)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return sorted, nil
}

// renderTemplate renders a template string with variable substitution and
// bash command execution via FuncMap
func (r *Renderer) renderTemplate(ctx context.Context, templateContent string, args map[string]string) (string, error) {
	tmpl, err := template.New("command").Funcs(template.FuncMap{
		"bash": bashFunc(ctx),
	}).Parse(templateContent)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, args); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}

	return buf.String(), nil
}

// bashFunc returns the template helper that executes a command and
// substitutes its output
func bashFunc(ctx context.Context) func(...string) string {
	return func(args ...string) string {
		if len(args) == 0 {
			return "[ERROR: bash function requires at least one argument]"
		}

		command := args[0]
		cmdArgs := args[1:]

		logger.G(ctx).WithFields(map[string]interface{}{
			"command": command,
			"args":    cmdArgs,
		}).Debug("executing template bash command")

		cmdCtx, cancel := context.WithTimeout(ctx, bashTimeout)
		defer cancel()

		cmd := exec.CommandContext(cmdCtx, command, cmdArgs...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			fullCmd := append([]string{command}, cmdArgs...)
			logger.G(ctx).WithFields(map[string]interface{}{
				"command": command,
				"args":    cmdArgs,
			}).WithError(err).Warn("template bash command failed")
			return fmt.Sprintf("[ERROR executing command '%s': %v]", strings.Join(fullCmd, " "), err)
		}

		// Trailing newlines make for ragged substitutions
		return strings.TrimRight(string(output), "\n\r")
	}
}
