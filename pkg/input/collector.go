package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/multiagent-studio/studio/pkg/core"
)

// ErrEmptyInput reports a task that was blank after trimming.
var ErrEmptyInput = errors.New("no task entered")

// Selection is the outcome of a collection round.
type Selection struct {
	Role     core.RoleDefinition
	Task     string
	FellBack bool
}

// Collector drives the role menu and the multi-line task prompt.
type Collector struct {
	src     LineSource
	out     io.Writer
	catalog *core.Catalog
}

// NewCollector creates a collector. Menu text goes to out.
func NewCollector(src LineSource, catalog *core.Catalog, out io.Writer) *Collector {
	if out == nil {
		out = io.Discard
	}
	if catalog == nil {
		catalog = core.NewCatalog()
	}
	return &Collector{src: src, out: out, catalog: catalog}
}

// SelectRole prints the menu and reads one answer. Unknown answers fall back
// to the catalog default with a warning. The custom entry prompts for a name
// and a background.
func (c *Collector) SelectRole(ctx context.Context) (core.RoleDefinition, bool, error) {
	roles := c.catalog.Roles()
	fmt.Fprintln(c.out, "\n📋 SELECT AGENT ROLE:")
	fmt.Fprintln(c.out, strings.Repeat("-", 70))
	for i, r := range roles {
		fmt.Fprintf(c.out, "  %d. %-20s - %s\n", i+1, r.Name, r.Description)
	}
	fmt.Fprintln(c.out, strings.Repeat("-", 70))

	answer, err := c.read(ctx, fmt.Sprintf("\nEnter your choice (1-%d): ", len(roles)))
	if err != nil {
		return core.RoleDefinition{}, false, err
	}
	role, ok := c.catalog.Choice(answer)
	if !ok {
		def := c.catalog.Default()
		fmt.Fprintf(c.out, "⚠️  Invalid choice. Using default '%s'\n", def.Name)
		return def, true, nil
	}
	if !role.IsCustom() {
		return role, false, nil
	}

	name, err := c.read(ctx, "Enter custom role name: ")
	if err != nil {
		return core.RoleDefinition{}, false, err
	}
	background, err := c.read(ctx, "Enter agent expertise/background: ")
	if err != nil {
		return core.RoleDefinition{}, false, err
	}
	return c.catalog.Custom(name, background), false, nil
}

// CollectTask reads task lines until a blank line follows at least one
// non-blank line. Leading blank lines are skipped. Lines are joined with
// newlines and the result is trimmed. EOF returns what was gathered, or
// io.EOF when nothing was.
func (c *Collector) CollectTask(ctx context.Context) (string, error) {
	fmt.Fprintln(c.out, "\n"+strings.Repeat("-", 70))
	fmt.Fprintln(c.out, "📝 WHAT DO YOU WANT THE AGENT TO DO?")
	fmt.Fprintln(c.out, strings.Repeat("-", 70))
	fmt.Fprintln(c.out, "Examples:")
	for _, ex := range examples {
		fmt.Fprintln(c.out, "  • "+ex)
	}
	fmt.Fprintln(c.out, "\nYour task (press Enter twice when done):")

	var lines []string
	for {
		line, err := c.read(ctx, "")
		if errors.Is(err, io.EOF) {
			if len(lines) == 0 {
				return "", io.EOF
			}
			break
		}
		if err != nil {
			return "", err
		}
		if line == "" {
			if len(lines) == 0 {
				continue
			}
			break
		}
		lines = append(lines, line)
	}

	// Line breaks are kept so lists and code reach the model as typed; only
	// the outer whitespace is dropped.
	task := strings.TrimSpace(strings.Join(lines, "\n"))
	if task == "" {
		return "", ErrEmptyInput
	}
	return task, nil
}

// Collect runs SelectRole then CollectTask.
func (c *Collector) Collect(ctx context.Context) (Selection, error) {
	role, fellBack, err := c.SelectRole(ctx)
	if err != nil {
		return Selection{}, err
	}
	task, err := c.CollectTask(ctx)
	if err != nil {
		return Selection{Role: role, FellBack: fellBack}, err
	}
	return Selection{Role: role, Task: task, FellBack: fellBack}, nil
}

// Confirm asks a yes/no question. Only "yes" and "y" (any case) count as
// yes; EOF counts as no.
func (c *Collector) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := c.read(ctx, question)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true, nil
	}
	return false, nil
}

func (c *Collector) read(ctx context.Context, prompt string) (string, error) {
	return c.src.ReadLine(ctx, prompt)
}

var examples = []string{
	"Explain quantum computing in simple terms",
	"Write a Python function to calculate fibonacci numbers",
	"Create a professional email thanking a client",
	"Research the benefits of meditation",
}
