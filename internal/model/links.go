// Package model defines core data structures shared by the widget renderers and the build pipeline.
package model

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

type LinkKind int

const nullTag = "!!null"

const (
	// LinkSimple is a bare URL string.
	LinkSimple LinkKind = iota
	// LinkDetailed is a {link, hide_hostname} record.
	LinkDetailed
)

var (
	ErrDuplicateLabel = errors.New("duplicate link label")
	ErrEmptyLink      = errors.New("link target is empty")
)

// LinkEntry is the target of a single labelled link. Its shape is resolved once,
// while decoding configuration.
type LinkEntry struct {
	Kind         LinkKind `json:"kind"`
	URL          string   `json:"url"`
	HideHostname bool     `json:"hide_hostname"`
}

func SimpleLink(url string) LinkEntry {
	return LinkEntry{Kind: LinkSimple, URL: url}
}

func DetailedLink(url string, hideHostname bool) LinkEntry {
	return LinkEntry{Kind: LinkDetailed, URL: url, HideHostname: hideHostname}
}

type detailedLink struct {
	Link         string `yaml:"link"`
	HideHostname bool   `yaml:"hide_hostname"`
}

func (e *LinkEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" || node.ShortTag() == nullTag {
			return fmt.Errorf("line %d: %w", node.Line, ErrEmptyLink)
		}
		*e = SimpleLink(node.Value)
		return nil
	case yaml.MappingNode:
		var d detailedLink
		if err := node.Decode(&d); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if d.Link == "" {
			return fmt.Errorf("line %d: %w", node.Line, ErrEmptyLink)
		}
		*e = DetailedLink(d.Link, d.HideHostname)
		return nil
	default:
		return fmt.Errorf("line %d: link entry must be a string or a mapping", node.Line)
	}
}

func (e LinkEntry) MarshalYAML() (any, error) {
	if e.Kind == LinkDetailed {
		return detailedLink{Link: e.URL, HideHostname: e.HideHostname}, nil
	}
	return e.URL, nil
}

// Link pairs a display label with its entry.
type Link struct {
	Label string    `json:"label"`
	Entry LinkEntry `json:"entry"`
}

// LinksConfig keeps links in the order they were declared.
type LinksConfig []Link

func (l LinksConfig) Len() int {
	return len(l)
}

func (l LinksConfig) Get(label string) (LinkEntry, bool) {
	for _, link := range l {
		if link.Label == label {
			return link.Entry, true
		}
	}
	return LinkEntry{}, false
}

func (l *LinksConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == nullTag {
		*l = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: links must be a mapping of label to link", node.Line)
	}

	links := make(LinksConfig, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		label := node.Content[i].Value
		if _, ok := seen[label]; ok {
			return fmt.Errorf("line %d: %w: %q", node.Content[i].Line, ErrDuplicateLabel, label)
		}
		seen[label] = struct{}{}

		// Null values bypass LinkEntry.UnmarshalYAML during Decode.
		if value := node.Content[i+1]; value.Kind == yaml.ScalarNode && value.ShortTag() == nullTag {
			return fmt.Errorf("link %q: line %d: %w", label, value.Line, ErrEmptyLink)
		}
		var entry LinkEntry
		if err := node.Content[i+1].Decode(&entry); err != nil {
			return fmt.Errorf("link %q: %w", label, err)
		}
		links = append(links, Link{Label: label, Entry: entry})
	}

	*l = links
	return nil
}

func (l LinksConfig) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, link := range l {
		var value yaml.Node
		if err := value.Encode(link.Entry); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: link.Label},
			&value,
		)
	}
	return node, nil
}
