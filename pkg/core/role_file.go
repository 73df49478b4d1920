package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// roleFile is the on-disk layout for additional roles:
//
//	roles:
//	  - id: lawyer
//	    name: Contract Lawyer
//	    goal: Review contracts for risk
//	    backstory: You are a meticulous contract lawyer.
type roleFile struct {
	Roles []RoleDefinition `yaml:"roles"`
}

// LoadRoles reads extra role definitions from a YAML file.
func LoadRoles(path string) ([]RoleDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	return ParseRoles(data)
}

// ParseRoles decodes extra role definitions from YAML.
func ParseRoles(data []byte) ([]RoleDefinition, error) {
	var f roleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roles file: %w", err)
	}
	for i, r := range f.Roles {
		if r.ID == "" {
			return nil, fmt.Errorf("role %d: id is required", i)
		}
	}
	return f.Roles, nil
}
