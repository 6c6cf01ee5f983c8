package testsupport

import (
	"embed"
	"encoding/json"
	"path"
	"testing"
)

//go:embed testdata
var fixtures embed.FS

// WidgetFixture is the on-disk shape of a widget seed record.
type WidgetFixture struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AccountFixture is the on-disk shape of an account seed record.
type AccountFixture struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoadFixture loads test data from the embedded testdata directory.
func LoadFixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", name, err)
	}

	return data
}

// LoadFixtureJSON loads a JSON fixture and unmarshals it into dest.
func LoadFixtureJSON(t testing.TB, name string, dest any) {
	t.Helper()

	data := LoadFixture(t, name)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", name, err)
	}
}

// FixturePath constructs a path to a fixture file inside testdata.
func FixturePath(filename string) string {
	return path.Join("testdata", filename)
}

// Widgets returns transient widgets built from testdata/widgets.json.
func Widgets(t testing.TB) []*Widget {
	t.Helper()

	var seeds []WidgetFixture
	LoadFixtureJSON(t, "widgets.json", &seeds)

	out := make([]*Widget, len(seeds))
	for i, s := range seeds {
		out[i] = NewWidgetBuilder().Name(s.Name).Color(s.Color).Build()
	}
	return out
}

// Accounts returns unsaved accounts built from testdata/accounts.json.
func Accounts(t testing.TB) []*Account {
	t.Helper()

	var seeds []AccountFixture
	LoadFixtureJSON(t, "accounts.json", &seeds)

	out := make([]*Account, len(seeds))
	for i, s := range seeds {
		out[i] = NewAccount(s.Email, s.Name)
	}
	return out
}
