package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]TableInfo)
	registryMu sync.RWMutex
)

// Register adds a table schema to the registry.
// Panics if a table with the same name is already registered or the schema
// does not start with the columns its kind requires.
func Register(info TableInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[info.Name]; exists {
		panic(fmt.Sprintf("table already registered: %s", info.Name))
	}
	if err := checkLeadingColumns(info); err != nil {
		panic(err.Error())
	}

	if info.Sheet == "" {
		info.Sheet = info.Name
	}

	registry[info.Name] = info
}

// checkLeadingColumns enforces id,date for entity tables and date for forms.
func checkLeadingColumns(info TableInfo) error {
	want := []string{"id", "date"}
	if info.IsForm {
		want = []string{"date"}
	}
	if len(info.Fields) < len(want) {
		return fmt.Errorf("table %s: expected leading columns %v", info.Name, want)
	}
	for i, name := range want {
		if info.Fields[i].Name != name {
			return fmt.Errorf("table %s: column %d is %q, expected %q", info.Name, i, info.Fields[i].Name, name)
		}
	}
	if info.IsForm && info.FieldIndex("id") >= 0 {
		return fmt.Errorf("table %s: form tables have no id column", info.Name)
	}
	return nil
}

// Get returns a table schema by name.
// Returns false if not found.
func Get(name string) (TableInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	info, ok := registry[name]
	return info, ok
}

// Lookup returns a table schema by name or ErrSchemaNotFound.
func Lookup(name string) (TableInfo, error) {
	info, ok := Get(name)
	if !ok {
		return TableInfo{}, newError(ErrSchemaNotFound, "table %s not found in schema registry", name)
	}
	return info, nil
}

// All returns all registered schemas sorted by name.
func All() []TableInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]TableInfo, 0, len(registry))
	for _, info := range registry {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Forms returns the registered form tables sorted by name.
func Forms() []TableInfo {
	var result []TableInfo
	for _, info := range All() {
		if info.IsForm {
			result = append(result, info)
		}
	}
	return result
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered tables.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]TableInfo)
}
