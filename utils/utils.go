// Package utils contains path and markdown helpers shared by the CLI and the
// bridge.
package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mitchellh/go-homedir"
)

var yamlPattern = regexp.MustCompile(`(?m)^---\r?\n(\s*\r?\n)?`)

// RemoveFrontmatter removes the front matter header of a markdown file.
func RemoveFrontmatter(content []byte) []byte {
	if frontmatterBoundaries := detectFrontmatter(content); frontmatterBoundaries[0] == 0 {
		return content[frontmatterBoundaries[1]:]
	}
	return content
}

func detectFrontmatter(c []byte) []int {
	if matches := yamlPattern.FindAllIndex(c, 2); len(matches) > 1 {
		return []int{matches[0][0], matches[1][1]}
	}
	return []int{-1, -1}
}

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// ExpandHome expands a leading tilde only. Variables are left for the
// caller to resolve.
func ExpandHome(path string) string {
	s, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return s
}

// IsMarkdownFile returns whether the filename has a markdown extension.
// Files without an extension are treated as markdown.
func IsMarkdownFile(filename string) bool {
	ext := filepath.Ext(filename)
	if ext == "" {
		return true
	}

	switch strings.ToLower(ext) {
	case ".md", ".mdown", ".mkdn", ".mkd", ".markdown", ".txt":
		return true
	default:
		return false
	}
}

// MarkdownExtensions are the patterns searched for in batch directories.
var MarkdownExtensions = []string{"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown", "*.txt"}
