package visserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// writeFixture writes a tiny 5x5 all-clear world (frame forced to rock)
// with a red anthill at (2,2), plus a single-instruction Drop brain for
// each color, and returns a Match pointing at them.
func writeFixture(t *testing.T) Match {
	t.Helper()
	dir := t.TempDir()

	worldText := "5\n5\n" +
		"# # # # #\n" +
		"# . . . #\n" +
		"# . + . #\n" +
		"# . . . #\n" +
		"# # # # #\n"
	worldPath := filepath.Join(dir, "tiny.world")
	if err := os.WriteFile(worldPath, []byte(worldText), 0o644); err != nil {
		t.Fatalf("writing world fixture: %v", err)
	}

	brainText := "Drop 0\n"
	redPath := filepath.Join(dir, "red.ant")
	blackPath := filepath.Join(dir, "black.ant")
	if err := os.WriteFile(redPath, []byte(brainText), 0o644); err != nil {
		t.Fatalf("writing red brain fixture: %v", err)
	}
	if err := os.WriteFile(blackPath, []byte(brainText), 0o644); err != nil {
		t.Fatalf("writing black brain fixture: %v", err)
	}

	return Match{World: worldPath, Red: redPath, Black: blackPath, Seed: 1}
}

func getJSON(t *testing.T, handler http.Handler, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK && out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func TestBackgroundReportsAnthillAndRocks(t *testing.T) {
	m := writeFixture(t)
	matchJSON, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshalling match: %v", err)
	}

	s := NewServer()
	var bg Background
	rec := getJSON(t, s.Routes(), "/background?match="+string(matchJSON), &bg)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if len(bg.RedAnthill) != 1 || bg.RedAnthill[0] != [2]uint8{2, 2} {
		t.Errorf("RedAnthill = %v, want [[2 2]]", bg.RedAnthill)
	}
	if len(bg.BlackAnthill) != 0 {
		t.Errorf("BlackAnthill = %v, want none", bg.BlackAnthill)
	}
	if len(bg.Rocks) != 16 {
		t.Errorf("len(Rocks) = %d, want 16 (the 5x5 frame)", len(bg.Rocks))
	}
	if bg.RedBrain != "Drop 0\n" {
		t.Errorf("RedBrain = %q, want the brain source verbatim", bg.RedBrain)
	}
}

func TestFrameAdvancesAndRewinds(t *testing.T) {
	m := writeFixture(t)
	matchJSON, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshalling match: %v", err)
	}
	query := "match=" + string(matchJSON)

	s := NewServer()
	routes := s.Routes()

	var f5 Frame
	rec := getJSON(t, routes, "/frame?"+query+"&frame_no=5", &f5)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if f5.FrameNo != 5 {
		t.Errorf("FrameNo = %d, want 5", f5.FrameNo)
	}

	// Requesting an earlier frame must reset and replay from scratch
	// rather than silently continuing to run forward.
	var f2 Frame
	rec = getJSON(t, routes, "/frame?"+query+"&frame_no=2", &f2)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if f2.FrameNo != 2 {
		t.Errorf("FrameNo = %d, want 2", f2.FrameNo)
	}

	// And advancing forward again from that rewound point must still work.
	var f6 Frame
	rec = getJSON(t, routes, "/frame?"+query+"&frame_no=6", &f6)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if f6.FrameNo != 6 {
		t.Errorf("FrameNo = %d, want 6", f6.FrameNo)
	}
}

func TestBackgroundMissingMatchIsBadRequest(t *testing.T) {
	s := NewServer()
	rec := getJSON(t, s.Routes(), "/background", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
