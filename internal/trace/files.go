package trace

import (
	"sort"
	"strings"
)

// FilesTouched groups every file-bearing tool invocation in the conversation
// by normalized path. Each group keeps the most significant action seen and
// counts the invocations touching that path. Groups appear in first-touched
// order.
func (c *Conversation) FilesTouched() []FileTouched {
	byPath := make(map[string]int)
	var touched []FileTouched

	for _, m := range c.Messages {
		for _, u := range m.ToolUsages {
			if u.FilePath == "" {
				continue
			}
			p := normalizePath(u.FilePath)
			idx, ok := byPath[p]
			if !ok {
				byPath[p] = len(touched)
				touched = append(touched, FileTouched{Path: p, Action: u.Action, Count: 1})
				continue
			}
			touched[idx].Count++
			if u.Action.MoreSignificant(touched[idx].Action) {
				touched[idx].Action = u.Action
			}
		}
	}

	return touched
}

// FileTimeline returns the ordered change history of one file within the
// conversation: every tool invocation touching the normalized path, sorted
// by owning-message index and annotated with a step number. Steps whose new
// content is large carry a truncated preview instead of forcing consumers
// to render the full text.
func (c *Conversation) FileTimeline(path string) []FileChangeEvent {
	want := normalizePath(path)

	var usages []ToolUsage
	for _, m := range c.Messages {
		for _, u := range m.ToolUsages {
			if u.FilePath != "" && normalizePath(u.FilePath) == want {
				usages = append(usages, u)
			}
		}
	}

	sort.SliceStable(usages, func(i, j int) bool {
		return usages[i].MessageIndex < usages[j].MessageIndex
	})

	events := make([]FileChangeEvent, 0, len(usages))
	for i, u := range usages {
		ev := FileChangeEvent{Step: i + 1, Usage: u}
		if len(u.NewContent) > largeContentThreshold {
			ev.LargeContent = true
			ev.Preview = firstLines(u.NewContent, previewLineCount)
		}
		events = append(events, ev)
	}
	return events
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
