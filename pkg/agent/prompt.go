package agent

import (
	"fmt"
	"strings"
)

func systemPrompt(role, goal, backstory string) string {
	return fmt.Sprintf("You are %s. %s\nYour personal goal is: %s", role, backstory, goal)
}

func taskPrompt(description, expectedOutput string, prior []string) string {
	var b strings.Builder
	b.WriteString("Current Task: ")
	b.WriteString(description)
	if expectedOutput != "" {
		b.WriteString("\n\nThis is the expected criteria for your final answer: ")
		b.WriteString(expectedOutput)
		b.WriteString("\nyou MUST return the actual complete content as the final answer, not a summary.")
	}
	if len(prior) > 0 {
		b.WriteString("\n\nThis is the context you're working with:\n")
		b.WriteString(strings.Join(prior, "\n\n"))
	}
	b.WriteString("\n\nBegin! This is VERY important to you, give your best Final Answer, your job depends on it!")
	return b.String()
}
