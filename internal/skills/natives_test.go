package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemSkill(t *testing.T) {
	fs := NewFilesystemSkill(t.TempDir())
	ctx := context.Background()

	if _, err := fs.Invoke(ctx, `{"command":"write","filename":"note.txt","content":"hello"}`); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := fs.Invoke(ctx, `{"command":"append","filename":"note.txt","content":" world"}`); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	out, err := fs.Invoke(ctx, `{"command":"read","filename":"note.txt"}`)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out != "hello world" {
		t.Errorf("Expected 'hello world', got %q", out)
	}

	out, err = fs.Invoke(ctx, `{"command":"list","filename":"."}`)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "note.txt") {
		t.Errorf("Expected listing to contain note.txt, got %q", out)
	}
}

func TestFilesystemSkill_UnsafePath(t *testing.T) {
	fs := NewFilesystemSkill(t.TempDir())

	_, err := fs.Invoke(context.Background(), `{"command":"read","filename":"../../etc/passwd"}`)
	if err == nil {
		t.Error("Expected error for path escaping the workspace")
	}
}

func TestParseBrowserInput(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    browserArgs
		wantErr bool
	}{
		{
			name:  "bare URL navigates",
			input: "https://example.com/page",
			want:  browserArgs{Action: "navigate", URL: "https://example.com/page"},
		},
		{
			name:  "bare action name",
			input: "text",
			want:  browserArgs{Action: "text"},
		},
		{
			name:  "json args",
			input: `{"action":"click","selector":"#submit"}`,
			want:  browserArgs{Action: "click", Selector: "#submit"},
		},
		{
			name:    "free text is rejected",
			input:   "open the news site",
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `{"action":`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseBrowserInput(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBrowserInput failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestBrowserSkill_ScreenshotsStayInWorkspace(t *testing.T) {
	dir := t.TempDir()
	b := NewBrowserSkill(dir)

	out, err := b.saveScreenshot([]byte("png-bytes"))
	if err != nil {
		t.Fatalf("saveScreenshot failed: %v", err)
	}
	if !strings.Contains(out, dir) {
		t.Errorf("Screenshot should land under the workspace, got %q", out)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "screenshots"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected one screenshot, got %d", len(entries))
	}
}

type fakeScheduleStore struct {
	added   []string
	cleared []string
}

func (f *fakeScheduleStore) AddSchedule(chatID string, ask string, intervalSeconds int) error {
	f.added = append(f.added, ask)
	return nil
}

func (f *fakeScheduleStore) ClearSchedules(chatID string) error {
	f.cleared = append(f.cleared, chatID)
	return nil
}

func TestScheduleSkill(t *testing.T) {
	st := &fakeScheduleStore{}
	sk := NewScheduleSkill(st)
	ctx := WithChatID(context.Background(), "42")

	out, err := sk.Invoke(ctx, `{"action":"schedule","ask":"check the weather","interval_seconds":3600}`)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if !strings.Contains(out, "check the weather") {
		t.Errorf("Unexpected output: %q", out)
	}
	if len(st.added) != 1 {
		t.Fatalf("Expected 1 schedule added, got %d", len(st.added))
	}

	// Interval below the floor is rejected without touching the store.
	out, err = sk.Invoke(ctx, `{"action":"schedule","ask":"spam me","interval_seconds":5}`)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !strings.Contains(out, "Minimum recurring interval") {
		t.Errorf("Expected interval rejection, got %q", out)
	}
	if len(st.added) != 1 {
		t.Error("Sub-minimum schedule should not reach the store")
	}

	// Interval 0 schedules a single run.
	out, err = sk.Invoke(ctx, `{"action":"schedule","ask":"remind me","interval_seconds":0}`)
	if err != nil {
		t.Fatalf("one-time schedule failed: %v", err)
	}
	if !strings.Contains(out, "once") {
		t.Errorf("Expected one-time confirmation, got %q", out)
	}
	if len(st.added) != 2 {
		t.Fatalf("Expected one-time schedule to reach the store, got %d", len(st.added))
	}

	if _, err := sk.Invoke(ctx, `{"action":"clear"}`); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(st.cleared) != 1 {
		t.Error("Expected schedules to be cleared")
	}
}

func TestScheduleSkill_MissingChatID(t *testing.T) {
	sk := NewScheduleSkill(&fakeScheduleStore{})

	_, err := sk.Invoke(context.Background(), `{"action":"clear"}`)
	if err == nil {
		t.Error("Expected error without chatID in context")
	}
}
