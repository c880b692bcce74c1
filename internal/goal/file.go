package goal

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

const fileMode = 0o600

// Read parses a goal file and returns the Goal with its description populated.
func Read(path string) (*Goal, error) {
	data, err := os.ReadFile(path) //nolint:gosec // goal path from trusted workspace
	if err != nil {
		return nil, fmt.Errorf("reading goal file: %w", err)
	}

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var g Goal
	if err := yaml.Unmarshal(fm, &g); err != nil {
		return nil, fmt.Errorf("parsing frontmatter in %s: %w", path, err)
	}

	for i := range g.Tasks {
		if g.Tasks[i].GoalID == 0 {
			g.Tasks[i].GoalID = g.ID
		}
	}
	g.Description = body
	g.File = path

	return &g, nil
}

// Write serializes a goal to a markdown file with YAML frontmatter.
func Write(path string, g *Goal) error {
	fm, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if g.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(g.Description)
		if !strings.HasSuffix(g.Description, "\n") {
			buf.WriteString("\n")
		}
	}

	return os.WriteFile(path, buf.Bytes(), fileMode)
}

// splitFrontmatter splits a markdown file into YAML frontmatter and body.
// The file must start with "---\n".
func splitFrontmatter(data []byte) ([]byte, string, error) {
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		return nil, "", errors.New("file does not start with YAML frontmatter (---)")
	}

	rest := content[4:]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		if !strings.HasSuffix(rest, "\n---") {
			return nil, "", errors.New("unclosed frontmatter (missing closing ---)")
		}
		idx = len(rest) - len("\n---")
	}

	fm := rest[:idx]
	body := ""
	closingEnd := idx + len("\n---\n")
	if closingEnd < len(rest) {
		body = strings.TrimLeft(rest[closingEnd:], "\n")
	}

	return []byte(fm), body, nil
}
