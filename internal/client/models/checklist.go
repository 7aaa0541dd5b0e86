package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ChecklistItem is one "application" line of a meditation or custom record.
type ChecklistItem struct {
	Text      string     `json:"text"`
	Checked   bool       `json:"checked"`
	CheckedAt *time.Time `json:"checkedAt,omitempty"`
}

// NewChecklist turns plain lines into unchecked items, skipping blanks.
func NewChecklist(lines ...string) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(lines))
	for _, l := range lines {
		if l == "" {
			continue
		}
		out = append(out, ChecklistItem{Text: l})
	}
	return out
}

// ChecklistText joins item texts with newlines, for search and display.
func ChecklistText(items []ChecklistItem) string {
	var b bytes.Buffer
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(it.Text)
	}
	return b.String()
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeLegacyLines accepts a single string or a list of strings.
func decodeLegacyLines(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil, nil
		}
		return []string{s}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("application: want string or list of strings: %w", err)
	}
	return list, nil
}

// decodeLegacyChecked accepts a bool (applies to the first item), a list of
// bools, or a map from item index to bool. The result has exactly n entries.
func decodeLegacyChecked(raw json.RawMessage, n int) ([]bool, error) {
	out := make([]bool, n)
	if isNull(raw) || n == 0 {
		return out, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		out[0] = b
		return out, nil
	}

	var list []bool
	if err := json.Unmarshal(raw, &list); err == nil {
		copy(out, list)
		return out, nil
	}

	var m map[string]bool
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("applyChecked: want bool, list or map: %w", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= n {
			continue
		}
		out[i] = m[k]
	}
	return out, nil
}

// legacyChecklist merges legacy lines and checked flags into items.
func legacyChecklist(lines []string, checked []bool, checkedAt *time.Time) []ChecklistItem {
	items := make([]ChecklistItem, 0, len(lines))
	for i, l := range lines {
		it := ChecklistItem{Text: l, Checked: checked[i]}
		if it.Checked && i == 0 && checkedAt != nil {
			at := *checkedAt
			it.CheckedAt = &at
		}
		items = append(items, it)
	}
	return items
}
