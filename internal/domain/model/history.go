package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	HistoryLimit      = 50
	previewMaxRunes   = 100
	titleMaxRunes     = 50
	untitledSummary   = "Untitled Summary"
	truncationEllipse = "..."
)

// HistoryEntry is one archived summary.
type HistoryEntry struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Title     string `json:"title"`
	Preview   string `json:"preview"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
}

// NewHistoryEntry derives title and preview from content. The id is the
// creation time in unix milliseconds.
func NewHistoryEntry(content string, now time.Time) *HistoryEntry {
	ms := now.UnixMilli()
	return &HistoryEntry{
		ID:        strconv.FormatInt(ms, 10),
		Content:   content,
		Title:     SummaryTitle(content),
		Preview:   SummaryPreview(content),
		Date:      now.UTC().Format(time.RFC3339Nano),
		Timestamp: ms,
	}
}

// SummaryTitle picks the first heading, or the first plain line.
func SummaryTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return trimmed[2:]
		}
		if strings.HasPrefix(trimmed, "## ") {
			return trimmed[3:]
		}
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			return truncateRunes(trimmed, titleMaxRunes)
		}
	}
	return untitledSummary
}

// SummaryPreview strips markdown and truncates.
func SummaryPreview(content string) string {
	return truncateRunes(StripMarkdown(content), previewMaxRunes)
}

var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`#{1,6}\s`), ""},
	{regexp.MustCompile(`\*\*`), ""},
	{regexp.MustCompile(`\*`), ""},
	{regexp.MustCompile("```.*?\n([\\s\\S]*?)```"), "$1"},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`(?m)^\s*[-+*]\s`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s`), ""},
}

// StripMarkdown removes the markup a preview should not show.
func StripMarkdown(text string) string {
	for _, r := range markdownRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + truncationEllipse
}
