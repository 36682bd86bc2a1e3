package sketch

import (
	"strings"
	"testing"
)

const sampleDoc = `# Maintained by hand, do not reorder.
profiles:
  release:
    fqbn: esp32:esp32:esp32s3:UploadSpeed=921600
    platforms:
      - platform: esp32:esp32 (3.0.2)
    libraries:
      - ArduinoJson (7.0.4)
      - PubSubClient (2.8.0)
  debug:
    fqbn: esp32:esp32:esp32s3:DebugLevel=verbose
    platforms:
      - platform: esp32:esp32 (3.0.2)
  broken:
    platforms:
      - platform: esp32:esp32 (3.0.2)
default_profile: release
`

func TestProfilesSkipMissingFQBN(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	profiles := doc.Profiles()
	if len(profiles) != 2 {
		t.Fatalf("expected 2 usable profiles, got %d", len(profiles))
	}
	if profiles[0].Name != "release" || profiles[1].Name != "debug" {
		t.Errorf("unexpected order: %+v", profiles)
	}
	if len(profiles[0].Libraries) != 2 || profiles[0].Libraries[0] != "ArduinoJson (7.0.4)" {
		t.Errorf("unexpected libraries: %v", profiles[0].Libraries)
	}
}

func TestActiveProfile(t *testing.T) {
	doc, _ := ParseDocument([]byte(sampleDoc))
	p, ok := doc.ActiveProfile()
	if !ok || p.Name != "release" {
		t.Errorf("expected active=release, got %+v ok=%v", p, ok)
	}
}

func TestActiveProfileDanglingPointer(t *testing.T) {
	// A default_profile naming no existing profile resolves to absent.
	doc, _ := ParseDocument([]byte("profiles:\n  a:\n    fqbn: arduino:avr:uno\ndefault_profile: gone\n"))
	if _, ok := doc.ActiveProfile(); ok {
		t.Error("expected no active profile")
	}
}

func TestDefaultProfileFallbackName(t *testing.T) {
	doc, _ := ParseDocument([]byte("profiles:\n  default:\n    fqbn: arduino:avr:uno\n"))
	if doc.DefaultProfile() != "default" {
		t.Errorf("expected fallback name, got=%s", doc.DefaultProfile())
	}
	if p, ok := doc.ActiveProfile(); !ok || p.Name != "default" {
		t.Errorf("expected fallback to resolve, got %+v ok=%v", p, ok)
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	if _, err := ParseDocument([]byte("profiles: [unclosed\n")); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestSetActiveFQBNPreservesRest(t *testing.T) {
	doc, _ := ParseDocument([]byte(sampleDoc))
	if !doc.SetActiveFQBN("esp32:esp32:esp32s3:UploadSpeed=460800", "esp32:esp32 (3.1.0)") {
		t.Fatal("expected active profile to be edited")
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, "fqbn: esp32:esp32:esp32s3:UploadSpeed=460800") {
		t.Error("fqbn not updated")
	}
	if !strings.Contains(s, "platform: esp32:esp32 (3.1.0)") {
		t.Error("platform entry not updated")
	}
	// Everything unrelated survives: the other profile, the libraries, the
	// leading comment, and the key order.
	if !strings.Contains(s, "fqbn: esp32:esp32:esp32s3:DebugLevel=verbose") {
		t.Error("debug profile was touched")
	}
	if !strings.Contains(s, "- ArduinoJson (7.0.4)") || !strings.Contains(s, "- PubSubClient (2.8.0)") {
		t.Error("libraries were not preserved")
	}
	if !strings.Contains(s, "# Maintained by hand") {
		t.Error("comment was dropped")
	}
	if strings.Index(s, "profiles:") > strings.Index(s, "default_profile:") {
		t.Error("top-level key order changed")
	}
	if strings.Index(s, "release:") > strings.Index(s, "debug:") {
		t.Error("profile order changed")
	}
}

func TestSetActiveFQBNMissingProfile(t *testing.T) {
	doc, _ := ParseDocument([]byte("default_profile: gone\n"))
	if doc.SetActiveFQBN("arduino:avr:uno", "") {
		t.Error("expected edit of missing profile to be a no-op")
	}
}

func TestSetDefaultProfile(t *testing.T) {
	doc, _ := ParseDocument([]byte(sampleDoc))
	doc.SetDefaultProfile("debug")
	if doc.DefaultProfile() != "debug" {
		t.Errorf("got=%s", doc.DefaultProfile())
	}

	// Insert into a document that has no default_profile yet.
	doc2, _ := ParseDocument([]byte("profiles:\n  a:\n    fqbn: arduino:avr:uno\n"))
	doc2.SetDefaultProfile("a")
	out, _ := doc2.Bytes()
	if !strings.Contains(string(out), "default_profile: a") {
		t.Errorf("default_profile not inserted:\n%s", out)
	}
}

func TestAddProfile(t *testing.T) {
	doc, _ := ParseDocument([]byte(sampleDoc))
	err := doc.AddProfile("ota", "esp32:esp32:esp32s3:PartitionScheme=min_spiffs", "esp32:esp32 (3.0.2)")
	if err != nil {
		t.Fatalf("AddProfile failed: %v", err)
	}

	profiles := doc.Profiles()
	last := profiles[len(profiles)-1]
	if last.Name != "ota" || last.FQBN != "esp32:esp32:esp32s3:PartitionScheme=min_spiffs" {
		t.Errorf("unexpected new profile: %+v", last)
	}
	if len(last.Libraries) != 0 {
		t.Errorf("expected empty libraries, got %v", last.Libraries)
	}

	out, _ := doc.Bytes()
	if !strings.Contains(string(out), "- platform: esp32:esp32 (3.0.2)") {
		t.Errorf("platform entry missing:\n%s", out)
	}
}

func TestAddProfileDuplicate(t *testing.T) {
	doc, _ := ParseDocument([]byte(sampleDoc))
	if err := doc.AddProfile("release", "arduino:avr:uno", "arduino:avr"); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
}

func TestAddProfileIntoEmptyDocument(t *testing.T) {
	doc := &Document{}
	if err := doc.AddProfile("default", "arduino:avr:uno", "arduino:avr (1.8.6)"); err != nil {
		t.Fatalf("AddProfile failed: %v", err)
	}
	profiles := doc.Profiles()
	if len(profiles) != 1 || profiles[0].Name != "default" {
		t.Errorf("unexpected profiles: %+v", profiles)
	}
}
