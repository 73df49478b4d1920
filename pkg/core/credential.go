package core

import "strings"

// Credential is the secret needed to reach the model backend. It is resolved
// once at start-up and shared read-only.
type Credential struct {
	// Provider is the backend the credential belongs to.
	Provider string
	// EnvVar names where the user is expected to put it.
	EnvVar string
	Value  string
	// Required is false for backends that need no key (ollama, mock).
	Required bool
}

// Missing reports whether a required credential is absent.
func (c Credential) Missing() bool {
	return c.Required && strings.TrimSpace(c.Value) == ""
}

// Ready reports whether executions may be attempted.
func (c Credential) Ready() bool { return !c.Missing() }
