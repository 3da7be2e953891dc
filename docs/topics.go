// Package docs embeds the help topics of the sap command.
//
// The index topic lists every other topic as "* name: summary" lines, in the
// order they are presented.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

//go:embed *.md
var files embed.FS

// Index is the topic listing all the others, shown by default.
const Index = "readme"

// All selects every indexed topic.
const All = "*"

// ErrUnknownTopic is returned for a topic that has no page.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic is one help page.
type Topic struct {
	Name    string
	Summary string
}

var indexLine = regexp.MustCompile(`^\*\s+([^:]+):\s*(.*)$`)

// Topics returns the topics listed in the index, in order.
func Topics() ([]Topic, error) {
	content, err := files.ReadFile(Index + ".md")
	if err != nil {
		return nil, err
	}
	var topics []Topic
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if m := indexLine.FindStringSubmatch(scanner.Text()); m != nil {
			topics = append(topics, Topic{Name: strings.TrimSpace(m[1]), Summary: strings.TrimSpace(m[2])})
		}
	}
	return topics, scanner.Err()
}

// Names returns the names of the indexed topics, or nil if the index cannot be read.
func Names() []string {
	topics, err := Topics()
	if err != nil {
		return nil
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}

// Get returns the markdown of a topic.
func Get(name string) (string, error) {
	content, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("%w %q, available topics: %s", ErrUnknownTopic, name, strings.Join(Names(), ", "))
	}
	return string(content), nil
}

// Join returns the markdown of several topics, one after the other.
// All expands to every indexed topic.
func Join(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == All {
			expanded = Names()
		}
		for _, n := range expanded {
			content, err := Get(n)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
