package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed slog JSON record.
type Entry struct {
	Time  time.Time
	Level slog.Level
	Msg   string
	Attrs []Attr // sorted by key
	Raw   string
}

// Attr is a flattened key/value pair from a record.
type Attr struct {
	Key   string
	Value string
}

// Parse decodes a JSON log line. Lines that are not JSON come back as an
// info entry carrying the raw text and ok=false.
func Parse(line string) (Entry, bool) {
	entry := Entry{Level: slog.LevelInfo, Msg: line, Raw: line}
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return entry, false
	}
	for key, value := range fields {
		switch key {
		case slog.TimeKey:
			if s, ok := value.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					entry.Time = t
				}
			}
		case slog.LevelKey:
			if s, ok := value.(string); ok {
				_ = entry.Level.UnmarshalText([]byte(s))
			}
		case slog.MessageKey:
			entry.Msg = fmt.Sprint(value)
		default:
			entry.Attrs = append(entry.Attrs, Attr{Key: key, Value: formatValue(value)})
		}
	}
	sort.Slice(entry.Attrs, func(i, j int) bool { return entry.Attrs[i].Key < entry.Attrs[j].Key })
	return entry, true
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// String renders the entry as "2006-01-02 15:04:05 LEVEL msg key=value".
func (e Entry) String() string {
	if e.Time.IsZero() && len(e.Attrs) == 0 && e.Msg == e.Raw {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", e.Level.String(), e.Msg)
	for _, a := range e.Attrs {
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value)
	}
	return b.String()
}

// Format parses and renders a batch of lines, dropping entries below minLevel.
// Lines that are not JSON are always kept.
func Format(lines []string, minLevel slog.Level) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		entry, ok := Parse(line)
		if ok && entry.Level < minLevel {
			continue
		}
		out = append(out, entry.String())
	}
	return out
}

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF"))
	levelStyle = map[slog.Level]lipgloss.Style{
		slog.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		slog.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
		slog.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		slog.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
)

// Colorize renders the entry with terminal colors. Without a color profile
// lipgloss emits the same text as String.
func (e Entry) Colorize() string {
	if e.Time.IsZero() && len(e.Attrs) == 0 && e.Msg == e.Raw {
		return e.Raw
	}
	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, timeStyle.Render(e.Time.Local().Format("2006-01-02 15:04:05")))
	}
	style, ok := levelStyle[e.Level]
	if !ok {
		style = levelStyle[slog.LevelInfo]
	}
	parts = append(parts, style.Render(fmt.Sprintf("%-5s", e.Level.String())), e.Msg)
	for _, a := range e.Attrs {
		parts = append(parts, keyStyle.Render(a.Key+"=")+a.Value)
	}
	return strings.Join(parts, " ")
}
