package models

import "testing"

func TestDeckBaseName(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "biology", want: "biology"},
		{name: "csv extension", in: "biology.csv", want: "biology"},
		{name: "path qualified", in: "cards/biology.csv", want: "biology"},
		{name: "windows path", in: `C:\cards\history.csv`, want: "history"},
		{name: "package extension", in: "history.APKG", want: "history"},
		{name: "dotted name kept", in: "chapter.1", want: "chapter.1"},
		{name: "trailing slash", in: "cards/", want: "cards/"},
		{name: "only extension", in: ".csv", want: ".csv"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeckBaseName(tt.in); got != tt.want {
				t.Errorf("DeckBaseName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripExt(t *testing.T) {
	tc := []struct {
		in   string
		want string
	}{
		{"biology.pdf", "biology"},
		{"notes.v2.pdf", "notes.v2"},
		{"README", "README"},
		{".hidden", ".hidden"},
	}

	for _, tt := range tc {
		if got := StripExt(tt.in); got != tt.want {
			t.Errorf("StripExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPackageFilename(t *testing.T) {
	if got := PackageFilename("decks/biology.csv"); got != "biology.apkg" {
		t.Errorf("PackageFilename() = %q, want biology.apkg", got)
	}
}

func TestRoute(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		tc := []struct {
			route Route
			want  string
		}{
			{Route{Kind: UploadRoute}, "/"},
			{Status("job-1"), "/status/job-1"},
			{Review("biology"), "/review/biology"},
			{Review("cell biology/part 1"), "/review/cell%20biology%2Fpart%201"},
			{Route{Kind: DecksRoute}, "/decks"},
		}
		for _, tt := range tc {
			if got := tt.route.String(); got != tt.want {
				t.Errorf("Route.String() = %q, want %q", got, tt.want)
			}
		}
	})

	t.Run("ParseRoute Round Trip", func(t *testing.T) {
		for _, r := range []Route{
			{Kind: UploadRoute},
			Status("3f2a"),
			Review("cell biology/part 1"),
			{Kind: DecksRoute},
		} {
			got, err := ParseRoute(r.String())
			if err != nil {
				t.Fatalf("ParseRoute(%q) error = %v", r.String(), err)
			}
			if got != r {
				t.Errorf("ParseRoute(%q) = %+v, want %+v", r.String(), got, r)
			}
		}
	})

	t.Run("ParseRoute Errors", func(t *testing.T) {
		for _, s := range []string{"/review/", "/status/a/b", "/settings", "/review/%zz"} {
			if _, err := ParseRoute(s); err == nil {
				t.Errorf("ParseRoute(%q) expected error", s)
			}
		}
	})
}

func TestJobStatus(t *testing.T) {
	t.Run("Processing clamps progress", func(t *testing.T) {
		if p := NewProcessing(140, "x"); p.Progress != 100 {
			t.Errorf("expected 100, got %v", p.Progress)
		}
		if p := NewProcessing(-3, "x"); p.Progress != 0 {
			t.Errorf("expected 0, got %v", p.Progress)
		}
		if p := NewProcessing(40, ""); p.Text() != "Processing... 40%" {
			t.Errorf("unexpected default message %q", p.Text())
		}
	})

	t.Run("Terminal states", func(t *testing.T) {
		tc := []struct {
			status   JobStatus
			state    JobState
			terminal bool
		}{
			{NewProcessing(10, "working"), StateProcessing, false},
			{Completed{DeckID: "biology"}, StateCompleted, true},
			{Failed{Message: "boom"}, StateFailed, true},
		}
		for _, tt := range tc {
			if tt.status.State() != tt.state {
				t.Errorf("State() = %v, want %v", tt.status.State(), tt.state)
			}
			if tt.status.Terminal() != tt.terminal {
				t.Errorf("%v Terminal() = %v, want %v", tt.state, tt.status.Terminal(), tt.terminal)
			}
		}
	})

	t.Run("State names", func(t *testing.T) {
		if StateCompleted.String() != "completed" || StateFailed.String() != "failed" || StateProcessing.String() != "processing" {
			t.Error("unexpected state names")
		}
	})
}

func TestExportRecordValidate(t *testing.T) {
	if err := NewExportRecord("biology", "/tmp/biology.apkg", 10, "application/octet-stream").Validate(); err != nil {
		t.Errorf("expected valid record, got %v", err)
	}
	if err := NewExportRecord("", "/tmp/x.apkg", 10, "").Validate(); err == nil {
		t.Error("expected error for missing deck")
	}
	if err := NewExportRecord("biology", "/tmp/x.apkg", 0, "").Validate(); err == nil {
		t.Error("expected error for empty package")
	}
}
