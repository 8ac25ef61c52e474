package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/whiskeyjimb/espim/internal/git"
	"github.com/whiskeyjimb/espim/internal/plugin"
	"gopkg.in/yaml.v3"
)

func testEntries() []plugin.Entry {
	return []plugin.Entry{
		{Installed: true, Name: "Deep Sky", Version: "v1.2.0"},
		{Installed: false, Name: "Better Pirates", Version: "master"},
	}
}

func testDetails() *plugin.Details {
	return &plugin.Details{
		Descriptor: plugin.Descriptor{Name: "Deep Sky", Version: "v1.2.0", URL: "https://example.com/deepsky.git"},
		Installed:  true,
		LinkPath:   "/game/plugins/[ESPIM] Deep Sky",
		RepoPath:   "/cache/plugins/Deep Sky",
		Head:       "0123456789abcdef0123456789abcdef01234567",
		Submodules: []git.Submodule{{Name: "sprites", Path: "images/sprites"}},
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	if err := f.FormatList(&buf, testEntries()); err != nil {
		t.Fatalf("FormatList: %v", err)
	}

	var data []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(data) != 2 || data[0]["name"] != "Deep Sky" || data[0]["installed"] != true {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}

func TestJSONFormatter_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).FormatList(&buf, nil); err != nil {
		t.Fatalf("FormatList: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestJSONFormatter_DetailsFlattenDescriptor(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).FormatDetails(&buf, testDetails()); err != nil {
		t.Fatalf("FormatDetails: %v", err)
	}
	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if data["name"] != "Deep Sky" || data["url"] != "https://example.com/deepsky.git" {
		t.Errorf("descriptor fields should be top-level: %s", buf.String())
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.FormatList(&buf, testEntries()); err != nil {
		t.Fatalf("FormatList: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Installed", "Name", "Version", "Deep Sky", "v1.2.0", "Yes", "No"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in table output: %s", want, output)
		}
	}
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).FormatList(&buf, nil); err != nil {
		t.Fatalf("FormatList: %v", err)
	}
	if !strings.Contains(buf.String(), "No plugins") {
		t.Errorf("expected empty message, got: %s", buf.String())
	}
}

func TestTableFormatter_Details(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).FormatDetails(&buf, testDetails()); err != nil {
		t.Fatalf("FormatDetails: %v", err)
	}
	output := buf.String()
	for _, want := range []string{"[ESPIM] Deep Sky", "0123456789ab", "sprites", "not initialized"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in details output: %s", want, output)
		}
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &YAMLFormatter{}
	if err := f.FormatList(&buf, testEntries()); err != nil {
		t.Fatalf("FormatList: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "name: Deep Sky") {
		t.Errorf("expected YAML key-value in output: %s", output)
	}

	var back []plugin.Entry
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(back) != 2 || !back[0].Installed {
		t.Errorf("unexpected decoded entries: %+v", back)
	}
}

func TestNewFormatter_Invalid(t *testing.T) {
	_, err := NewFormatter("xml")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}
