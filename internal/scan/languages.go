package scan

import (
	"path/filepath"
	"strings"
)

// languageInfo describes how to classify lines for one language.
type languageInfo struct {
	name        string
	lineComment []string
}

// languagesByExtension maps lowercased file extensions to language info.
// Unknown extensions are skipped by the scanner.
var languagesByExtension = map[string]languageInfo{
	".go":    {"Go", []string{"//"}},
	".py":    {"Python", []string{"#"}},
	".js":    {"JavaScript", []string{"//"}},
	".jsx":   {"JavaScript", []string{"//"}},
	".ts":    {"TypeScript", []string{"//"}},
	".tsx":   {"TypeScript", []string{"//"}},
	".rs":    {"Rust", []string{"//"}},
	".c":     {"C", []string{"//"}},
	".h":     {"C Header", []string{"//"}},
	".cpp":   {"C++", []string{"//"}},
	".hpp":   {"C++ Header", []string{"//"}},
	".java":  {"Java", []string{"//"}},
	".kt":    {"Kotlin", []string{"//"}},
	".rb":    {"Ruby", []string{"#"}},
	".php":   {"PHP", []string{"//", "#"}},
	".cs":    {"C#", []string{"//"}},
	".swift": {"Swift", []string{"//"}},
	".sh":    {"Shell", []string{"#"}},
	".bash":  {"Shell", []string{"#"}},
	".zsh":   {"Shell", []string{"#"}},
	".ps1":   {"PowerShell", []string{"#"}},
	".sql":   {"SQL", []string{"--"}},
	".yaml":  {"YAML", []string{"#"}},
	".yml":   {"YAML", []string{"#"}},
	".toml":  {"TOML", []string{"#"}},
	".json":  {"JSON", nil},
	".md":    {"Markdown", nil},
	".rst":   {"reStructuredText", nil},
	".txt":   {"Plain Text", nil},
	".html":  {"HTML", nil},
	".css":   {"CSS", nil},
	".scss":  {"SCSS", []string{"//"}},
	".proto": {"Protocol Buffers", []string{"//"}},
	".tf":    {"Terraform", []string{"#", "//"}},
	".lua":   {"Lua", []string{"--"}},
	".pl":    {"Perl", []string{"#"}},
	".r":     {"R", []string{"#"}},
	".scala": {"Scala", []string{"//"}},
	".ex":    {"Elixir", []string{"#"}},
	".exs":   {"Elixir", []string{"#"}},
	".zig":   {"Zig", []string{"//"}},
}

// languagesByFilename covers extensionless well-known files.
var languagesByFilename = map[string]languageInfo{
	"makefile":   {"Makefile", []string{"#"}},
	"dockerfile": {"Dockerfile", []string{"#"}},
	"rakefile":   {"Ruby", []string{"#"}},
	"gemfile":    {"Ruby", []string{"#"}},
}

// lookupLanguage resolves a path to its language info.
func lookupLanguage(path string) (languageInfo, bool) {
	base := strings.ToLower(filepath.Base(path))
	if info, ok := languagesByFilename[base]; ok {
		return info, true
	}
	info, ok := languagesByExtension[strings.ToLower(filepath.Ext(path))]
	return info, ok
}

// lookupFenceLanguage resolves a markdown fence tag like "go" or "python"
// to a language name for embedded-child stats.
var fenceLanguages = map[string]string{
	"go":         "Go",
	"golang":     "Go",
	"py":         "Python",
	"python":     "Python",
	"js":         "JavaScript",
	"javascript": "JavaScript",
	"ts":         "TypeScript",
	"typescript": "TypeScript",
	"rust":       "Rust",
	"sh":         "Shell",
	"bash":       "Shell",
	"shell":      "Shell",
	"sql":        "SQL",
	"yaml":       "YAML",
	"json":       "JSON",
	"c":          "C",
	"java":       "Java",
	"ruby":       "Ruby",
}
