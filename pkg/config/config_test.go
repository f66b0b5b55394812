package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Model   string        `split_words:"true" default:"openai/gpt-4o-mini"`
	Timeout time.Duration `split_words:"true" default:"30s"`
	APIKey  string        `envconfig:"API_KEY" required:"true"`
}

func TestNewReadsEnvFileWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "LUNATEST_API_KEY=from-file\nLUNATEST_MODEL=from-file-model\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("LUNATEST_MODEL", "from-env")
	t.Cleanup(func() {
		_ = os.Unsetenv("LUNATEST_API_KEY")
		SetEnvFile("")
	})
	SetEnvFile(path)

	conf, err := New[sampleConfig]("LUNATEST")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.APIKey != "from-file" {
		t.Fatalf("APIKey = %q, want from-file", conf.APIKey)
	}
	if conf.Model != "from-env" {
		t.Fatalf("Model = %q, want from-env", conf.Model)
	}
	if conf.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v, want 30s", conf.Timeout)
	}
}

func TestNewMissingEnvFile(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })
	SetEnvFile(filepath.Join(t.TempDir(), "missing.env"))

	if _, err := New[sampleConfig]("LUNAMISSING"); err == nil {
		t.Fatal("New() error = nil, want env file error")
	}
}
