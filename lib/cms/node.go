// Package cms models the content-repository nodes the blog views render.
//
// Property accessors never fail: a missing property or one of an unexpected
// type yields the supplied default and is logged at debug level.
package cms

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Node types rendered by the blog views.
const (
	TypeBlog   = "blognt:blog"
	TypePost   = "blognt:post"
	TypeAuthor = "blognt:author"
	TypeFile   = "jnt:file"
)

// Well-known property names.
const (
	PropTitle         = "jcr:title"
	PropDescription   = "description"
	PropPageSize      = "pageSize"
	PropExcerpt       = "excerpt"
	PropContent       = "content"
	PropSlug          = "slug"
	PropDatePublished = "datePublished"
	PropDateModified  = "dateModified"
	PropTags          = "j:tagList"
	PropAuthor        = "author"
	PropImage         = "image"
	PropAllowComments = "allowComments"
	PropRatingCount   = "ratingCount"
	PropRatingTotal   = "ratingTotal"
	PropBio           = "bio"
	PropRole          = "role"
	PropAvatar        = "avatar"
	PropSocialLinks   = "socialLinks"
)

// Node is a content node. A nil *Node is valid and has no properties.
type Node struct {
	ID         string
	Type       string
	Name       string
	URL        string
	Properties map[string]any

	children []*Node
	refs     map[string]*Node
}

// Children returns the ordered child nodes.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// ChildrenOfType returns the children whose primary type is nodeType.
func (n *Node) ChildrenOfType(nodeType string) []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if c != nil && c.Type == nodeType {
			out = append(out, c)
		}
	}
	return out
}

// Ref returns the node referenced by property name, or nil.
func (n *Node) Ref(name string) *Node {
	if n == nil || n.refs == nil {
		return nil
	}
	return n.refs[name]
}

// Has reports whether the property is set.
func (n *Node) Has(name string) bool {
	if n == nil || n.Properties == nil {
		return false
	}
	_, ok := n.Properties[name]
	return ok
}

func (n *Node) raw(name string) (any, bool) {
	if n == nil || n.Properties == nil {
		return nil, false
	}
	v, ok := n.Properties[name]
	return v, ok && v != nil
}

func mismatch(n *Node, name string, v any, want string) {
	slog.Debug("node property type mismatch",
		slog.String("node", n.ID),
		slog.String("property", name),
		slog.String("want", want),
		slog.String("got", fmt.Sprintf("%T", v)),
	)
}

// String returns a string property, or def.
func (n *Node) String(name, def string) string {
	v, ok := n.raw(name)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return def
		}
		return s
	case fmt.Stringer:
		return s.String()
	case int, int64, float64, bool:
		return fmt.Sprint(s)
	}
	mismatch(n, name, v, "string")
	return def
}

// Int returns an integer property, or def.
func (n *Node) Int(name string, def int) int {
	v, ok := n.raw(name)
	if !ok {
		return def
	}
	switch i := v.(type) {
	case int:
		return i
	case int64:
		return int(i)
	case uint64:
		return int(i)
	case float64:
		return int(i)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(i)); err == nil {
			return parsed
		}
	}
	mismatch(n, name, v, "int")
	return def
}

// Float returns a numeric property as float64, or def.
func (n *Node) Float(name string, def float64) float64 {
	v, ok := n.raw(name)
	if !ok {
		return def
	}
	switch f := v.(type) {
	case float64:
		return f
	case int:
		return float64(f)
	case int64:
		return float64(f)
	case uint64:
		return float64(f)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err == nil {
			return parsed
		}
	}
	mismatch(n, name, v, "float")
	return def
}

// Bool returns a boolean property, or def.
func (n *Node) Bool(name string, def bool) bool {
	v, ok := n.raw(name)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	mismatch(n, name, v, "bool")
	return def
}

// Strings returns a multi-valued string property. A single string is
// returned as a one-element slice.
func (n *Node) Strings(name string) []string {
	v, ok := n.raw(name)
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return s
	case string:
		if s == "" {
			return nil
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok && str != "" {
				out = append(out, str)
			}
		}
		return out
	}
	mismatch(n, name, v, "[]string")
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time returns a date property.
func (n *Node) Time(name string) (time.Time, bool) {
	v, ok := n.raw(name)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
	}
	mismatch(n, name, v, "time")
	return time.Time{}, false
}

// FormatDate renders a date property as "January 2, 2006", or "".
func (n *Node) FormatDate(name string) string {
	t, ok := n.Time(name)
	if !ok {
		return ""
	}
	return t.Format("January 2, 2006")
}

// Title returns jcr:title, or def.
func (n *Node) Title(def string) string { return n.String(PropTitle, def) }
