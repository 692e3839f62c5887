package catalog

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ScopeMap resolves the permission scopes known for a client application.
// It is loaded from a flat file of whitespace-separated
// "scope resource client_id" triples.
type ScopeMap struct {
	byClient map[string][]string
}

// LoadScopeMap parses the scope map file at path. A missing file yields an
// empty map.
func LoadScopeMap(path string) (*ScopeMap, error) {
	m := &ScopeMap{byClient: make(map[string][]string)}

	if path == "" {
		return m, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("opening scope map: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	seen := make(map[string]map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		scope, resource, client := fields[0], fields[1], fields[2]

		// Fully qualified scopes are used as-is; bare names resolve
		// through their resource URI.
		value := scope
		if !strings.HasPrefix(scope, "http") && !strings.HasPrefix(scope, ".") {
			value = resource
		}

		key := strings.ToLower(client)
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		if !seen[key][value] {
			seen[key][value] = true
			m.byClient[key] = append(m.byClient[key], value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading scope map: %w", err)
	}

	for _, scopes := range m.byClient {
		sort.Strings(scopes)
	}

	return m, nil
}

// ScopesFor returns the sorted scopes recorded for the client application.
// Client IDs are matched case-insensitively.
func (m *ScopeMap) ScopesFor(clientID string) []string {
	return m.byClient[strings.ToLower(clientID)]
}
