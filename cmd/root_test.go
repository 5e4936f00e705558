package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mj1618/ai-testing-tool/internal/device"
	"github.com/mj1618/ai-testing-tool/internal/device/devicetest"
)

const page = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <android.widget.Button class="android.widget.Button" text="Sign in" package="com.example" checkable="false" bounds="[100,200][300,400]" clickable="true"/>
</hierarchy>`

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"run", "snapshot", "screenshot", "serve", "version"}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestBindFlags_SkipsMissingFlags(t *testing.T) {
	if err := bindFlags(vip, versionCmd.Flags()); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshot_Input(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile("page.xml", []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"snapshot", "--input", "page.xml", "--xml", "filtered.xml"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	data, err := os.ReadFile("filtered.xml")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "checkable") || !strings.Contains(string(data), `text="Sign in"`) {
		t.Errorf("unexpected filtered xml:\n%s", data)
	}
}

func TestScreenshot_Input(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile("screen.png", devicetest.PNG(1080, 2400), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"screenshot", "--input", "screen.png", "--output", "screen.jpg"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("screenshot: %v", err)
	}
	data, err := os.ReadFile("screen.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("output is not a JPEG")
	}
}

func TestRun_DebugModeWithFakeDevice(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	fake := devicetest.MustFake(page)
	orig := newFactory
	newFactory = func() device.Factory {
		return device.FactoryFunc(func(ctx context.Context, opts device.Options) (device.Session, error) {
			return fake, nil
		})
	}
	t.Cleanup(func() { newFactory = orig })

	if err := os.WriteFile("prompt.md", []byte("You are a tester."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("tasks.json", []byte(`[{"name":"login","details":"Log in","skip":false}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetIn(strings.NewReader("{\"action\":\"tap\",\"bounds\":\"[100,200][300,400]\"}\n{\"action\":\"finish\"}\n"))
	rootCmd.SetArgs([]string{"run", "prompt.md", "tasks.json", "--debug", "--reports", "out"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}

	runs, err := filepath.Glob(filepath.Join(dir, "out", "login", "*", "step_2.json"))
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %v", runs)
	}
	if len(fake.Taps) != 1 || fake.Taps[0] != (devicetest.Point{X: 200, Y: 300}) {
		t.Errorf("taps = %v", fake.Taps)
	}
	if fake.Quits != 1 {
		t.Errorf("quits = %d, want 1", fake.Quits)
	}
}

func TestRun_MissingTaskFileFailsBeforeSession(t *testing.T) {
	t.Chdir(t.TempDir())
	opened := false
	orig := newFactory
	newFactory = func() device.Factory {
		return device.FactoryFunc(func(ctx context.Context, opts device.Options) (device.Session, error) {
			opened = true
			return nil, nil
		})
	}
	t.Cleanup(func() { newFactory = orig })

	if err := os.WriteFile("prompt.md", []byte("p"), 0o644); err != nil {
		t.Fatal(err)
	}
	rootCmd.SetArgs([]string{"run", "prompt.md", "missing.json"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error")
	}
	if opened {
		t.Error("session opened before inputs were validated")
	}
}
