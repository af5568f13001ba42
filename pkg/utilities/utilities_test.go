package utilities

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type mockItemJson struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type mockItem struct {
	Name  string
	Count int
}

func (mij mockItemJson) ConvertToDomain() mockItem {
	return mockItem{Name: mij.Name, Count: PositiveOr(mij.Count, 1)}
}

type mockConfigJson struct {
	Timeout string         `json:"timeout"`
	Items   []mockItemJson `json:"items"`
}

type mockConfig struct {
	Timeout time.Duration
	Items   []mockItem
}

func (mcj mockConfigJson) ConvertToDomain() mockConfig {
	return mockConfig{
		Timeout: ParseDurationOr(mcj.Timeout, time.Second),
		Items:   ConvertJsonArrayToDomain[mockItemJson, mockItem](mcj.Items),
	}
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"timeout": "3s", "items": [{"name": "a", "count": 2}, {"name": "b"}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig[mockConfigJson, mockConfig](path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Expected 3s, got %v", cfg.Timeout)
	}
	if len(cfg.Items) != 2 || cfg.Items[0].Count != 2 || cfg.Items[1].Count != 1 {
		t.Errorf("Unexpected items: %+v", cfg.Items)
	}
}

func TestReadConfigErrors(t *testing.T) {
	if _, err := ReadConfig[mockConfigJson, mockConfig]("does-not-exist.json"); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfig[mockConfigJson, mockConfig](path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestConvertJsonArrayToDomainEmpty(t *testing.T) {
	result := ConvertJsonArrayToDomain[mockItemJson, mockItem](nil)
	if result == nil || len(result) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", result)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("UTILITIES_TEST_STR", "  value ")
	t.Setenv("UTILITIES_TEST_INT", "42")
	t.Setenv("UTILITIES_TEST_BAD", "x")

	if got := EnvOr("UTILITIES_TEST_STR", "fallback"); got != "value" {
		t.Errorf("Expected trimmed value, got %q", got)
	}
	if got := EnvOr("UTILITIES_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %q", got)
	}
	if got := EnvIntOr("UTILITIES_TEST_INT", 1); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := EnvIntOr("UTILITIES_TEST_BAD", 7); got != 7 {
		t.Errorf("Expected fallback 7, got %d", got)
	}
}

func TestParseDurationOr(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"", time.Minute},
		{"250ms", 250 * time.Millisecond},
		{"-1s", time.Minute},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		if got := ParseDurationOr(tt.input, time.Minute); got != tt.expected {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}

func TestSerialize(t *testing.T) {
	raw, err := Serialize(mockItem{Name: "a", Count: 1})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"Name":"a","Count":1}` {
		t.Errorf("Unexpected JSON: %s", raw)
	}
}

func TestTernary(t *testing.T) {
	if Ternary(true, "yes", "no") != "yes" || Ternary(false, 1, 2) != 2 {
		t.Error("Ternary picked the wrong branch")
	}
}

func TestFailOnErrorWithNilError(t *testing.T) {
	FailOnError(nil, "should not panic")
}

func TestFailOnErrorWithError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	FailOnError(os.ErrNotExist, "expected")
}
