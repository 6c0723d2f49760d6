package view

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/roach88/strand/internal/reactive"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

type textPart struct {
	literal string
	path    string // empty for literal parts
}

// parseInterpolation splits s into literal and {{ path }} parts.
// An unterminated "{{" is kept as literal text.
func parseInterpolation(s string) []textPart {
	var parts []textPart
	for {
		start := strings.Index(s, openDelim)
		if start < 0 {
			break
		}
		end := strings.Index(s[start+len(openDelim):], closeDelim)
		if end < 0 {
			break
		}
		end += start + len(openDelim)
		if start > 0 {
			parts = append(parts, textPart{literal: s[:start]})
		}
		path := strings.TrimSpace(s[start+len(openDelim) : end])
		if path == "" {
			parts = append(parts, textPart{literal: s[start : end+len(closeDelim)]})
		} else {
			parts = append(parts, textPart{path: path})
		}
		s = s[end+len(closeDelim):]
	}
	if s != "" {
		parts = append(parts, textPart{literal: s})
	}
	return parts
}

func hasInterpolation(parts []textPart) bool {
	for _, p := range parts {
		if p.path != "" {
			return true
		}
	}
	return false
}

// textBinding keeps a text node in step with the paths it interpolates.
type textBinding struct {
	node    *html.Node
	parts   []textPart
	scope   *reactive.Record
	cancels []func()
}

func (t *textBinding) render() error {
	t.unsubscribe()

	var b strings.Builder
	var errs []error
	for _, p := range t.parts {
		if p.path == "" {
			b.WriteString(p.literal)
			continue
		}
		v, d, err := evaluate(t.scope, p.path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b.WriteString(display(v))
		t.subscribe(d)
	}
	t.node.Data = b.String()
	return errors.Join(errs...)
}

func (t *textBinding) subscribe(d deps) {
	onChange := func(any) error { return t.render() }
	for _, f := range d.fields {
		t.cancels = append(t.cancels, f.rec.Watch(f.key, onChange))
	}
	for _, l := range d.lists {
		t.cancels = append(t.cancels, l.Subscribe(func(reactive.Mutation) error { return t.render() }))
	}
}

func (t *textBinding) unsubscribe() {
	for _, cancel := range t.cancels {
		cancel()
	}
	t.cancels = t.cancels[:0]
}
