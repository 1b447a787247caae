// internal/synthesis/context.go
// Package synthesis turns an aggregate of source results into a bounded
// prompt context and generates an answer from it through a single
// serialized model instance.
package synthesis

import (
	"strings"
	"unicode"

	"omnisearch/internal/fanout"
	"omnisearch/internal/sources"
)

// Context is the read-only text block fed to the model, derived from one
// aggregate under a byte budget.
type Context struct {
	Text      string
	Included  []sources.SourceID
	Truncated bool
}

// Builder renders successful source results into a budgeted context.
// Sources are consumed in a fixed priority order; each one receives a
// proportional share of whatever budget the sources before it left over.
type Builder struct {
	priority []sources.SourceID
}

// NewBuilder creates a builder with the given priority order. An empty
// order falls back to each aggregate's own invocation order.
func NewBuilder(priority []sources.SourceID) *Builder {
	return &Builder{priority: priority}
}

// Build renders the aggregate into at most budget bytes. Failed and
// timed-out sources contribute nothing. A budget of zero, or an
// aggregate with no usable results, yields an empty context.
func (b *Builder) Build(agg *fanout.Aggregate, budget int) Context {
	if budget <= 0 {
		return Context{}
	}

	var pending []sources.SourceID
	for _, id := range b.order(agg) {
		res, ok := agg.Results[id]
		if ok && res.OK() && len(res.Items) > 0 {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return Context{}
	}

	var (
		lines     []string
		included  []sources.SourceID
		used      int
		truncated bool
	)
	for i, id := range pending {
		share := (budget - used) / (len(pending) - i)
		if share <= 0 {
			truncated = true
			break
		}

		sourceUsed := 0
		for _, item := range agg.Results[id].Items {
			line := renderLine(id, item)
			sep := 0
			if len(lines) > 0 {
				sep = 1 // joining newline
			}
			if sourceUsed+sep+len(line) > share {
				cut := truncateAtWhitespace(line, share-sourceUsed-sep)
				if cut != "" {
					lines = append(lines, cut)
					sourceUsed += sep + len(cut)
				}
				truncated = true
				break
			}
			lines = append(lines, line)
			sourceUsed += sep + len(line)
		}
		if sourceUsed > 0 {
			included = append(included, id)
			used += sourceUsed
		}
	}

	return Context{
		Text:      strings.Join(lines, "\n"),
		Included:  included,
		Truncated: truncated,
	}
}

// order resolves the effective priority: the configured order first, then
// any aggregate sources the configuration did not mention, in invocation
// order.
func (b *Builder) order(agg *fanout.Aggregate) []sources.SourceID {
	if len(b.priority) == 0 {
		return agg.Order
	}
	seen := make(map[sources.SourceID]bool, len(b.priority))
	order := make([]sources.SourceID, 0, len(agg.Order))
	for _, id := range b.priority {
		if _, ok := agg.Results[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, id := range agg.Order {
		if !seen[id] {
			order = append(order, id)
		}
	}
	return order
}

func renderLine(id sources.SourceID, item sources.SourceItem) string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(string(id))
	sb.WriteString("] ")
	switch {
	case item.Title != "" && item.Snippet != "":
		sb.WriteString(item.Title)
		sb.WriteString(" - ")
		sb.WriteString(item.Snippet)
	case item.Title != "":
		sb.WriteString(item.Title)
	default:
		sb.WriteString(item.Snippet)
	}
	return sb.String()
}

// truncateAtWhitespace cuts s to at most limit bytes, backing up to the
// nearest preceding whitespace so words stay whole when possible.
func truncateAtWhitespace(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace)
}
