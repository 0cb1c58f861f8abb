package shared

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Errorf("expected unique ids, got %s twice", a)
	}
	if !IsID(a) {
		t.Errorf("expected %s to parse as an id", a)
	}
}

func TestIsID(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want bool
	}{
		{name: "uuid", in: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", want: true},
		{name: "empty", in: "", want: false},
		{name: "store id", in: "Tqbcl5ivi3ymf6cs4jdsnkz5yda", want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsID(tt.in); got != tt.want {
				t.Errorf("IsID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state) != 32 {
		t.Errorf("expected 32 characters, got %d", len(state))
	}
	if strings.ContainsAny(state, "+/=") {
		t.Errorf("state should be URL safe, got %s", state)
	}

	other, _ := GenerateState()
	if other == state {
		t.Error("expected states to differ")
	}
}

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", "https://example.com"}},
		{"linux", []string{"xdg-open", "https://example.com"}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", "https://example.com"}},
	}
	for _, c := range tc {
		t.Run(c.goos, func(t *testing.T) {
			got, err := browserCommand(c.goos, "https://example.com")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, " ") != strings.Join(c.want, " ") {
				t.Errorf("expected %v, got %v", c.want, got)
			}
		})
	}

	t.Run("launcher table is not modified", func(t *testing.T) {
		_, _ = browserCommand("linux", "https://a.example")
		if len(browserCommands["linux"]) != 1 {
			t.Errorf("expected launcher to stay unchanged, got %v", browserCommands["linux"])
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		if _, err := browserCommand("plan9", "https://example.com"); !errors.Is(err, ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"a": 1}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(compact) != `{"a":1}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(pretty) != "{\n  \"a\": 1\n}" {
		t.Errorf("unexpected pretty output %s", pretty)
	}
}
