package assistant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// AgentInfo describes one agent definition file discovered under the
// agents directory.
type AgentInfo struct {
	Name        string // "code-reviewer" for both "code-reviewer.agent.md" and "code-reviewer.md"
	FileName    string
	Path        string
	Description string // first non-frontmatter, non-heading line of the file
}

// firstDescriptionLine reads path and returns its first line of actual
// prose, skipping a leading "---" frontmatter block and markdown
// headings. Used by List to give list-agents something more useful
// than a bare file name.
func firstDescriptionLine(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	inFrontmatter := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if i == 0 && trimmed == "---" {
			inFrontmatter = true
			continue
		}
		if inFrontmatter {
			if trimmed == "---" {
				inFrontmatter = false
			}
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed
	}
	return ""
}

// Registry enumerates and resolves agent definition files under a
// well-known directory (<user-home>/.claude/agents/).
type Registry struct {
	Dir string
}

// NewRegistry builds a Registry rooted at <home>/.claude/agents. If home
// cannot be resolved the zero-value directory is used and List returns
// an empty slice rather than erroring — agents are optional.
func NewRegistry() *Registry {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Registry{}
	}
	return &Registry{Dir: filepath.Join(home, ".claude", "agents")}
}

func agentNameFromFile(fileName string) string {
	name := strings.TrimSuffix(fileName, ".md")
	name = strings.TrimSuffix(name, ".agent")
	return name
}

// List enumerates agent files, sorted by name. Missing directory is not
// an error — it yields an empty list.
func (r *Registry) List(ctx context.Context) ([]AgentInfo, error) {
	if r.Dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(r.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assistant: reading agent directory: %w", err)
	}

	candidates := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".agent.md") || strings.HasSuffix(n, ".md") {
			candidates = append(candidates, n)
		}
	}

	// Each candidate's description line requires its own file read;
	// fan those out concurrently rather than reading the directory's
	// agent files one at a time.
	infos := make([]AgentInfo, len(candidates))
	g, _ := errgroup.WithContext(ctx)
	for i, fileName := range candidates {
		i, fileName := i, fileName
		path := filepath.Join(r.Dir, fileName)
		g.Go(func() error {
			infos[i] = AgentInfo{
				Name:        agentNameFromFile(fileName),
				FileName:    fileName,
				Path:        path,
				Description: firstDescriptionLine(path),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Resolve finds the AgentInfo for name, or reports ok=false.
func (r *Registry) Resolve(ctx context.Context, name string) (AgentInfo, bool, error) {
	infos, err := r.List(ctx)
	if err != nil {
		return AgentInfo{}, false, err
	}
	for _, info := range infos {
		if info.Name == name {
			return info, true, nil
		}
	}
	return AgentInfo{}, false, nil
}

// ReadContents reads the full file contents for an agent.
func (r *Registry) ReadContents(info AgentInfo) (string, error) {
	data, err := os.ReadFile(info.Path)
	if err != nil {
		return "", fmt.Errorf("assistant: reading agent %q: %w", info.Name, err)
	}
	return string(data), nil
}
