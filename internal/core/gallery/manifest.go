package gallery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Task is one input record. target_url and pattern are pulled out for the
// driver; every field, known or not, is kept raw so the output item can carry
// it through verbatim.
type Task struct {
	TargetURL string
	Pattern   string

	fields map[string]json.RawMessage
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	t.fields = fields
	if raw, ok := fields["target_url"]; ok {
		_ = json.Unmarshal(raw, &t.TargetURL)
	}
	if raw, ok := fields["pattern"]; ok {
		_ = json.Unmarshal(raw, &t.Pattern)
	}
	return nil
}

// Item is one output record: the task's fields plus the download bookkeeping.
type Item struct {
	Task         Task
	Downloaded   []string
	Skipped      []string
	TotalMatched int
}

func (it Item) MarshalJSON() ([]byte, error) {
	merged := make(map[string]json.RawMessage, len(it.Task.fields)+3)
	for k, v := range it.Task.fields {
		merged[k] = v
	}
	extras := map[string]interface{}{
		"downloaded_files": it.Downloaded,
		"skipped_files":    it.Skipped,
		"total_matched":    it.TotalMatched,
	}
	for k, v := range extras {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = b
	}
	return json.Marshal(merged)
}

// LoadTasks reads the input manifest. An unreadable or malformed manifest is
// fatal to the run.
func LoadTasks(path string) ([]Task, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input manifest: %w", err)
	}
	var tasks []Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, fmt.Errorf("parse input manifest %s: %w", path, err)
	}
	return tasks, nil
}

// WriteManifest serializes the accumulated items. HTML escaping is disabled
// so URLs in passthrough fields stay readable.
func WriteManifest(path string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

var itemIDRe = regexp.MustCompile(`/itm/(\d+)`)

// itemID extracts the numeric listing identifier from a target URL.
func itemID(url string) string {
	m := itemIDRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}
