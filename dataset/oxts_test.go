package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadOXTSFormat(t *testing.T) {

	content := "lat:   latitude of the oxts-unit (deg)\n" +
		"lon:   longitude of the oxts-unit (deg)\n" +
		"alt:   altitude of the oxts-unit (m)\n" +
		"roll:  roll angle (rad),    0 = level, positive = left side up\n" +
		"\n" +
		"vn:    velocity towards north (m/s)\n"

	path := filepath.Join(t.TempDir(), "dataformat.txt")

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names, err := ReadOXTSFormat(path)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"lat", "lon", "alt", "roll", "vn"}

	if len(names) != len(want) {
		t.Fatalf("expected %d field names, got %d", len(want), len(names))
	}

	for i, name := range want {
		if names[i] != name {
			t.Errorf("expected field %q at %d, got %q", name, i, names[i])
		}
	}
}

func TestReadOXTS(t *testing.T) {

	path := filepath.Join(t.TempDir(), "0000000000.txt")

	content := "49.015 8.4342 112.83 0.035752\n"

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := ReadOXTS(path, []string{"lat", "lon", "alt", "roll"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lon, ok := record.Get("lon"); !ok || lon != 8.4342 {
		t.Errorf("expected lon 8.4342, got %v ok %v", lon, ok)
	}

	if roll, ok := record.Get("roll"); !ok || roll != 0.035752 {
		t.Errorf("expected roll 0.035752, got %v ok %v", roll, ok)
	}

	if _, ok := record.Get("yaw"); ok {
		t.Errorf("expected missing field to report not ok")
	}

	lat, lon, alt := record.LatLonAlt()

	if lat != 49.015 || lon != 8.4342 || alt != 112.83 {
		t.Errorf("expected position (49.015,8.4342,112.83), got (%v,%v,%v)",
			lat, lon, alt)
	}
}

func TestReadOXTSShortRecord(t *testing.T) {

	path := filepath.Join(t.TempDir(), "0000000000.txt")

	// fewer values than declared fields, the undelivered ones are absent
	if err := os.WriteFile(path, []byte("49.015 8.4342\n"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := ReadOXTS(path, []string{"lat", "lon", "alt"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := record.Get("alt"); ok {
		t.Errorf("expected undelivered field to report not ok")
	}
}

func TestReadOXTSMalformed(t *testing.T) {

	path := filepath.Join(t.TempDir(), "0000000000.txt")

	if err := os.WriteFile(path, []byte("49.015 not-a-number\n"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ReadOXTS(path, []string{"lat", "lon"}); err == nil {
		t.Errorf("expected error for malformed record")
	}
}
