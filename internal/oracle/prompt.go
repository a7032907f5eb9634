package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"ada/internal/domain"
)

var categoryHints = map[domain.Category]string{
	domain.CategoryCodeSearch: "searching code, finding functions/classes, grepping content, using regex",
	domain.CategoryFileOps:    "reading, editing, writing, moving, copying, deleting files, listing directories, showing file trees",
	domain.CategoryGit:        "git operations like status, diff, log, commit, branch operations",
	domain.CategoryShell:      "running shell commands, executing scripts",
	domain.CategoryWeb:        "fetching web content, downloading from URLs",
	domain.CategoryGeneral:    "general questions, help, or requests that don't fit above categories",
}

var specialistRoles = map[domain.Category]string{
	domain.CategoryCodeSearch: "You are a code search specialist. Help users find and analyze code using grep, glob patterns, and search tools.",
	domain.CategoryFileOps:    "You are a file operations specialist. Help users read, edit, write, and manage files.",
	domain.CategoryGit:        "You are a git operations specialist. Help users with git commands and repository management.",
	domain.CategoryShell:      "You are a shell command specialist. Help users execute commands safely.",
	domain.CategoryWeb:        "You are a web fetching specialist. Help users retrieve content from URLs.",
	domain.CategoryGeneral:    "You are Ada, a helpful AI assistant. Answer questions and provide assistance.",
}

func classifySystemPrompt(categories []domain.Category) string {
	var b strings.Builder
	b.WriteString("You are an intent classifier. Analyze the user's request and classify it into ONE of these categories:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s: %s\n", c, categoryHints[c])
	}
	b.WriteString("\nRespond with ONLY the category name, nothing else.")
	return b.String()
}

func classifyUserPrompt(req domain.ClassifyRequest) string {
	if req.WorkingDir == "" {
		return req.Input
	}
	return fmt.Sprintf("Working directory: %s\n\n%s", req.WorkingDir, req.Input)
}

func selectSystemPrompt(req domain.SelectRequest) (string, error) {
	var b strings.Builder
	role, ok := specialistRoles[req.Category]
	if !ok {
		role = specialistRoles[domain.CategoryGeneral]
	}
	b.WriteString(role)
	if req.WorkingDir != "" {
		fmt.Fprintf(&b, "\nThe working directory is %s. Relative paths are resolved against it.", req.WorkingDir)
	}
	if len(req.Tools) == 0 {
		return b.String(), nil
	}

	defs, err := json.MarshalIndent(req.Tools, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode tool definitions: %w", err)
	}
	b.WriteString("\n\nYou can call exactly one of these tools:\n")
	b.Write(defs)
	b.WriteString(`

Respond with a single JSON object and nothing else.
To call a tool: {"tool": "<name>", "arguments": {...}} with arguments matching the tool's parameters.
If no tool is needed: {"reply": "<your answer>"}`)
	return b.String(), nil
}
