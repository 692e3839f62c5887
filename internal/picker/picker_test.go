package picker_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halcyonlab/entra-token-util/internal/catalog"
	"github.com/halcyonlab/entra-token-util/internal/picker"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apps.csv")
	content := "AppDisplayName,AppId\n" +
		"Contoso Billing,c0000000-0000-0000-0000-000000000001\n" +
		"Contoso Reports,c0000000-0000-0000-0000-000000000002\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestPicker_EnterSelectsHighlightedApp(t *testing.T) {
	m := update(picker.New(testCatalog(t)),
		keyRunes("j"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	choice := m.(picker.Model).Choice()
	if choice == nil {
		t.Fatal("expected a selection")
	}
	want := catalog.PinnedApps()[1]
	if choice.ClientID != want.ClientID {
		t.Errorf("selected %q, want %q", choice.ClientID, want.ClientID)
	}
}

func TestPicker_FilterNarrowsToCatalogMatches(t *testing.T) {
	m := update(picker.New(testCatalog(t)),
		keyRunes("/"),
		keyRunes("billing"),
	)

	view := m.View()
	if !strings.Contains(view, "Contoso Billing") {
		t.Errorf("expected filtered view to contain match, got:\n%s", view)
	}
	if strings.Contains(view, "Microsoft Teams") {
		t.Errorf("pinned apps should be hidden while filtering, got:\n%s", view)
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEnter})
	choice := m.(picker.Model).Choice()
	if choice == nil || choice.Name != "Contoso Billing" {
		t.Fatalf("expected Contoso Billing, got %+v", choice)
	}
}

func TestPicker_CustomClientIDEntry(t *testing.T) {
	m := update(picker.New(testCatalog(t)),
		keyRunes("c"),
		keyRunes("my-client-id"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	choice := m.(picker.Model).Choice()
	if choice == nil {
		t.Fatal("expected a selection")
	}
	if choice.ClientID != "my-client-id" {
		t.Errorf("client id = %q", choice.ClientID)
	}
	if choice.Scope != catalog.DefaultScope {
		t.Errorf("scope = %q, want default", choice.Scope)
	}
}

func TestPicker_QuitWithoutSelection(t *testing.T) {
	m := update(picker.New(testCatalog(t)), keyRunes("q"))

	model := m.(picker.Model)
	if model.Choice() != nil {
		t.Error("expected no selection")
	}
	if !model.Aborted() {
		t.Error("expected aborted")
	}
}
