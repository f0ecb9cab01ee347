package session

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskcards/internal/task"
)

type SortKey int

const (
	SortNone SortKey = iota
	SortImportance
	SortDeadline
	SortName
)

var sortKeyNames = []string{"none", "importance", "deadline", "name"}

func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return "none"
	}
	return sortKeyNames[k]
}

// Next cycles through the keys in display order.
func (k SortKey) Next() SortKey {
	return SortKey((int(k) + 1) % len(sortKeyNames))
}

// ParseSortKey maps a name to a key. Unknown names fall back to SortNone.
func ParseSortKey(v string) SortKey {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range sortKeyNames {
		if v == name {
			return SortKey(i)
		}
	}
	return SortNone
}

// Sort returns a reordered copy of tasks. Equal keys keep their input order.
func Sort(tasks []task.Task, key SortKey) []task.Task {
	out := slices.Clone(tasks)
	switch key {
	case SortImportance:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return cmp.Compare(b.Importance, a.Importance)
		})
	case SortDeadline:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return a.Deadline.Compare(b.Deadline)
		})
	case SortName:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
	return out
}
