// Package catalog supplies the application catalog the flow consumes: a
// pinned list of well-known Microsoft first-party applications plus an
// optional CSV-backed full catalog.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultScope is requested when the caller does not specify one.
const DefaultScope = "https://graph.microsoft.com/.default offline_access openid"

// App is one selectable client application.
type App struct {
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
}

// PinnedApps returns the built-in shortlist of first-party applications.
// The client IDs are Microsoft's published well-known application IDs.
func PinnedApps() []App {
	return []App{
		{Name: "Microsoft Azure CLI", ClientID: "04b07795-8ddb-461a-bbee-02f9e1bf7b46", Scope: DefaultScope},
		{Name: "Microsoft Teams", ClientID: "1fec8e78-bce4-4aaf-ab1b-5451cc387264", Scope: DefaultScope},
		{Name: "Microsoft Outlook", ClientID: "5d661950-3475-41cd-a2c3-d671a3162bc1", Scope: DefaultScope},
		{Name: "Azure Active Directory PowerShell", ClientID: "1b730954-1685-4b74-9bfd-dac224a7b894", Scope: DefaultScope},
	}
}

// Catalog holds the loaded application list. It is constructed once per
// process and passed to its consumers explicitly.
type Catalog struct {
	pinned []App
	apps   []App
}

// Load builds a catalog from the CSV file at path. A missing file is not an
// error: the catalog then contains only the pinned applications, matching
// the degraded behavior users expect when the export is absent.
func Load(path string) (*Catalog, error) {
	c := &Catalog{pinned: PinnedApps()}

	if path == "" {
		return c, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	apps, err := parseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	c.apps = apps

	return c, nil
}

// Pinned returns the shortlist shown before any search.
func (c *Catalog) Pinned() []App {
	return c.pinned
}

// AddPinned appends user-configured applications to the pinned shortlist.
func (c *Catalog) AddPinned(apps ...App) {
	for _, app := range apps {
		if app.Scope == "" {
			app.Scope = DefaultScope
		}
		c.pinned = append(c.pinned, app)
	}
}

// Len reports the number of applications loaded from the catalog file.
func (c *Catalog) Len() int {
	return len(c.apps)
}

// Search returns catalog applications whose name contains the query,
// case-insensitively. A non-positive limit means unlimited.
func (c *Catalog) Search(query string, limit int) []App {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var results []App
	for _, app := range c.apps {
		if strings.Contains(strings.ToLower(app.Name), query) {
			results = append(results, app)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results
}

// parseCSV reads a Microsoft application export with AppDisplayName and
// AppId columns. Rows missing either field are skipped.
func parseCSV(r io.Reader) ([]App, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	nameCol, idCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "AppDisplayName":
			nameCol = i
		case "AppId":
			idCol = i
		}
	}
	if nameCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("missing AppDisplayName or AppId column")
	}

	var apps []App
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		if nameCol >= len(record) || idCol >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		id := strings.TrimSpace(record[idCol])
		if name == "" || id == "" {
			continue
		}
		apps = append(apps, App{Name: name, ClientID: id, Scope: DefaultScope})
	}

	return apps, nil
}
