package core

import (
	"sort"
	"strconv"
	"strings"
)

// Built-in role identifiers, in menu order.
const (
	RoleResearch  = "research"
	RolePython    = "python"
	RoleContent   = "content"
	RoleEmail     = "email"
	RoleMarketing = "marketing"
	RoleData      = "data"
	RoleCreative  = "creative"
	RoleCustom    = "custom"
)

// DefaultRoleID is used when a selection cannot be resolved.
const DefaultRoleID = RoleResearch

const (
	DefaultGoal      = "Complete the assigned task with high quality and clarity"
	DefaultBackstory = "You are an expert in your field and communicate clearly."
	customRoleName   = "Custom Agent"
)

// RoleDefinition is a named persona that parameterizes an agent.
type RoleDefinition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Goal        string `yaml:"goal"`
	Backstory   string `yaml:"backstory"`
}

// IsCustom reports whether the definition was supplied by the user.
func (r RoleDefinition) IsCustom() bool { return r.ID == RoleCustom }

var builtinRoles = []RoleDefinition{
	{
		ID:          RoleResearch,
		Name:        "Research Analyst",
		Description: "Expert at researching and summarizing information",
		Goal:        "Gather and summarize accurate information",
		Backstory:   "You are an expert researcher who gathers accurate information and presents it clearly.",
	},
	{
		ID:          RolePython,
		Name:        "Python Expert",
		Description: "Senior developer who writes clean Python code",
		Goal:        "Write clean, efficient, well-documented Python code",
		Backstory:   "You are a senior Python developer who writes production-quality code and explains it clearly.",
	},
	{
		ID:          RoleContent,
		Name:        "Content Writer",
		Description: "Skilled at creating engaging written content",
		Goal:        "Create engaging, well-structured content",
		Backstory:   "You are a skilled content writer who makes complex topics easy to understand.",
	},
	{
		ID:          RoleEmail,
		Name:        "Email Writer",
		Description: "Professional at writing business emails",
		Goal:        "Write clear, professional emails",
		Backstory:   "You are a professional communication specialist who writes effective business emails.",
	},
	{
		ID:          RoleMarketing,
		Name:        "Marketing Specialist",
		Description: "Expert in marketing strategies and campaigns",
		Goal:        "Develop practical, creative marketing ideas",
		Backstory:   "You are a creative marketer who designs campaigns that convert.",
	},
	{
		ID:          RoleData,
		Name:        "Data Analyst",
		Description: "Analyzes data and provides insights",
		Goal:        "Analyze data and provide actionable insights",
		Backstory:   "You are a data analyst who explains numbers in plain language and focuses on decisions.",
	},
	{
		ID:          RoleCreative,
		Name:        "Creative Writer",
		Description: "Crafts compelling stories and narratives",
		Goal:        "Craft compelling stories and narratives",
		Backstory:   "You are a creative storyteller who writes vivid, memorable content.",
	},
}

var customEntry = RoleDefinition{
	ID:          RoleCustom,
	Name:        "Custom",
	Description: "Define your own agent role",
	Goal:        DefaultGoal,
	Backstory:   DefaultBackstory,
}

// Catalog is an immutable, ordered set of roles. The custom entry is always
// last.
type Catalog struct {
	roles     []RoleDefinition
	index     map[string]int
	defaultID string
	wantID    string
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithExtraRoles appends roles after the built-ins. Entries whose id is empty
// or already taken are skipped.
func WithExtraRoles(extra ...RoleDefinition) CatalogOption {
	return func(c *Catalog) {
		for _, r := range extra {
			id := strings.ToLower(strings.TrimSpace(r.ID))
			if id == "" || id == RoleCustom {
				continue
			}
			if _, exists := c.index[id]; exists {
				continue
			}
			r.ID = id
			if strings.TrimSpace(r.Name) == "" {
				r.Name = id
			}
			if strings.TrimSpace(r.Goal) == "" {
				r.Goal = DefaultGoal
			}
			if strings.TrimSpace(r.Backstory) == "" {
				r.Backstory = DefaultBackstory
			}
			c.index[id] = len(c.roles)
			c.roles = append(c.roles, r)
		}
	}
}

// WithDefaultRole changes the fallback role. Unknown ids are ignored.
func WithDefaultRole(id string) CatalogOption {
	return func(c *Catalog) {
		c.wantID = strings.ToLower(strings.TrimSpace(id))
	}
}

// NewCatalog builds the built-in catalog plus any extra roles.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		roles:     make([]RoleDefinition, 0, len(builtinRoles)+1),
		index:     make(map[string]int, len(builtinRoles)+1),
		defaultID: DefaultRoleID,
	}
	for _, r := range builtinRoles {
		c.index[r.ID] = len(c.roles)
		c.roles = append(c.roles, r)
	}
	for _, opt := range opts {
		opt(c)
	}
	// Resolved after all extra roles exist so option order does not matter.
	if _, ok := c.index[c.wantID]; ok {
		c.defaultID = c.wantID
	}
	c.index[RoleCustom] = len(c.roles)
	c.roles = append(c.roles, customEntry)
	return c
}

// Roles returns the catalog entries in menu order, custom last.
func (c *Catalog) Roles() []RoleDefinition {
	return append([]RoleDefinition(nil), c.roles...)
}

// Len returns the number of entries including custom.
func (c *Catalog) Len() int { return len(c.roles) }

// Default returns the fallback role.
func (c *Catalog) Default() RoleDefinition {
	return c.roles[c.index[c.defaultID]]
}

// Lookup finds a role by identifier (case-insensitive).
func (c *Catalog) Lookup(id string) (RoleDefinition, bool) {
	i, ok := c.index[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return RoleDefinition{}, false
	}
	return c.roles[i], true
}

// Choice resolves a menu answer: a 1-based position or an identifier.
func (c *Catalog) Choice(answer string) (RoleDefinition, bool) {
	answer = strings.TrimSpace(answer)
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(c.roles) {
			return RoleDefinition{}, false
		}
		return c.roles[n-1], true
	}
	return c.Lookup(answer)
}

// Resolve is Lookup with fallback to the default role. fellBack reports
// whether the fallback was used.
func (c *Catalog) Resolve(id string) (role RoleDefinition, fellBack bool) {
	if r, ok := c.Lookup(id); ok {
		return r, false
	}
	return c.Default(), true
}

// Custom builds the user-defined role.
func (c *Catalog) Custom(name, backstory string) RoleDefinition {
	r := customEntry
	r.Name = strings.TrimSpace(name)
	if r.Name == "" {
		r.Name = customRoleName
	}
	r.Backstory = strings.TrimSpace(backstory)
	if r.Backstory == "" {
		r.Backstory = DefaultBackstory
	}
	r.Description = r.Backstory
	return r
}

// IDs returns the identifiers sorted alphabetically.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.roles))
	for _, r := range c.roles {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}
