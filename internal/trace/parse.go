package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
)

// ParseFile fully reconstructs the conversation recorded in a trace file.
// A missing file yields a conversation with only the identity fields
// populated and no error; malformed lines never abort the parse. Other I/O
// failures are returned so the caller never mistakes a half-read trace for
// a short session.
func ParseFile(path, project, projectDir string) (Conversation, error) {
	conv := Conversation{
		FilePath:    path,
		ProjectName: project,
		ProjectDir:  projectDir,
	}

	rc, err := openTrace(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return conv, nil
		}
		return conv, fmt.Errorf("open trace %s: %w", path, err)
	}
	defer rc.Close()

	records, err := readRecords(rc)
	if err != nil {
		return conv, fmt.Errorf("read trace %s: %w", path, err)
	}
	build(&conv, records)
	return conv, nil
}

// Parse reconstructs a conversation from an already-open trace stream.
func Parse(r io.Reader, project, projectDir string) (Conversation, error) {
	conv := Conversation{ProjectName: project, ProjectDir: projectDir}
	records, err := readRecords(r)
	if err != nil {
		return conv, err
	}
	build(&conv, records)
	return conv, nil
}

// readRecords deserializes every line independently, discarding lines that
// are not valid JSON. A trailing partial line in a still-growing file simply
// fails to parse; a scanner failure is reported so callers do not treat a
// truncated read as a complete trace.
func readRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, err
	}
	return records, nil
}

// positioned pairs a reconstructed message with its first-occurrence
// position in the raw stream, the order the final conversation preserves.
type positioned struct {
	pos int
	msg Message
}

// assistantGroup collects the raw records of one assistant turn. Streaming
// splits a turn across records sharing a message id; records without an id
// each form their own group.
type assistantGroup struct {
	pos     int
	records []*MessagePayload
	times   []string
}

func build(conv *Conversation, records []Record) {
	var pending []positioned
	groups := make(map[string]*assistantGroup)
	var groupOrder []string

	for i, rec := range records {
		// Session identity and branch come from the first record of any
		// kind that carries them, bookkeeping records included.
		if conv.SessionID == "" && rec.SessionID != "" {
			conv.SessionID = rec.SessionID
		}
		if conv.GitBranch == "" && rec.GitBranch != "" {
			conv.GitBranch = rec.GitBranch
		}

		if skipRecordTypes[rec.Type] || rec.Message == nil {
			continue
		}

		switch rec.Type {
		case "user":
			text, echo := extractText(rec.Message)
			// Tool-result echoes are plumbing, not conversation content.
			// They still consume stream position i, which keeps the
			// relative order of retained messages intact.
			if echo || strings.TrimSpace(text) == "" {
				continue
			}
			pending = append(pending, positioned{
				pos: i,
				msg: Message{
					Role:      "user",
					Text:      text,
					Timestamp: parseTimestamp(rec.Timestamp),
				},
			})

		case "assistant":
			id := rec.Message.ID
			if id == "" {
				id = fmt.Sprintf("pos-%d", i)
			}
			g, ok := groups[id]
			if !ok {
				g = &assistantGroup{pos: i}
				groups[id] = g
				groupOrder = append(groupOrder, id)
			}
			g.records = append(g.records, rec.Message)
			g.times = append(g.times, rec.Timestamp)
		}
	}

	for _, id := range groupOrder {
		g := groups[id]
		msg := mergeAssistantGroup(g)
		// Turns whose merged text is blank are dropped, which also drops
		// any tool calls they carried. Tool-only turns therefore never
		// reach the visible message list.
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		pending = append(pending, positioned{pos: g.pos, msg: msg})
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].pos < pending[j].pos
	})

	conv.Messages = make([]Message, 0, len(pending))
	for _, p := range pending {
		conv.Messages = append(conv.Messages, p.msg)
	}

	// Tool usages were attached during merging, before final ordering and
	// filtering were known; fix up their owning-message references now.
	for mi := range conv.Messages {
		msg := &conv.Messages[mi]
		for ti := range msg.ToolUsages {
			msg.ToolUsages[ti].MessageIndex = mi
			msg.ToolUsages[ti].Timestamp = msg.Timestamp
		}
	}

	if len(conv.Messages) > 0 {
		conv.Created = conv.Messages[0].Timestamp
		conv.Modified = conv.Messages[len(conv.Messages)-1].Timestamp
	}
	for _, m := range conv.Messages {
		if m.Role == "user" {
			conv.FirstPrompt = capLen(m.Text, firstPromptMax)
			break
		}
	}
}

// mergeAssistantGroup collapses the records of one assistant turn into a
// single message: text blocks concatenate in record order separated by a
// blank line, tool_use blocks become usages in record order, token counts
// take the maximum seen (usage is cumulative across fragments), and the
// timestamp is the earliest among the fragments.
func mergeAssistantGroup(g *assistantGroup) Message {
	msg := Message{Role: "assistant"}
	var parts []string

	for idx, payload := range g.records {
		if ts := parseTimestamp(g.times[idx]); !ts.IsZero() {
			if msg.Timestamp.IsZero() || ts.Before(msg.Timestamp) {
				msg.Timestamp = ts
			}
		}
		if msg.Model == "" && payload.Model != "" {
			msg.Model = payload.Model
		}
		if u := payload.Usage; u != nil {
			if u.InputTokens > msg.InputTokens {
				msg.InputTokens = u.InputTokens
			}
			if u.OutputTokens > msg.OutputTokens {
				msg.OutputTokens = u.OutputTokens
			}
		}

		for _, b := range contentBlocks(payload) {
			switch b.Type {
			case "text":
				if t := cleanText(b.Text); t != "" {
					parts = append(parts, t)
				}
			case "tool_use":
				msg.ToolUsages = append(msg.ToolUsages, toolUsageFromBlock(b))
			}
			// thinking blocks are always discarded
		}
	}

	msg.Text = strings.Join(parts, "\n\n")
	return msg
}
