package text

import (
	"testing"
)

func TestParser_ParseCommand(t *testing.T) {
	parser := NewParser("!")

	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantName string
		wantArg  string
		wantURLs []string
	}{
		{
			name:     "Play with URL",
			input:    "!p https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantOK:   true,
			wantName: "p",
			wantArg:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantURLs: []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
		{
			name:     "Command without argument",
			input:    "!n",
			wantOK:   true,
			wantName: "n",
		},
		{
			name:     "Uppercase command name",
			input:    "!STOP",
			wantOK:   true,
			wantName: "stop",
		},
		{
			name:     "Extra whitespace",
			input:    "  !play    https://youtu.be/abc   ",
			wantOK:   true,
			wantName: "play",
			wantArg:  "https://youtu.be/abc",
			wantURLs: []string{"https://youtu.be/abc"},
		},
		{
			name:     "Full-width prefix is normalized",
			input:    "！list",
			wantOK:   true,
			wantName: "list",
		},
		{
			name:   "No prefix",
			input:  "hello there",
			wantOK: false,
		},
		{
			name:   "Prefix only",
			input:  "!",
			wantOK: false,
		},
		{
			name:   "Empty message",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := parser.ParseCommand(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseCommand(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if cmd.Name != tt.wantName {
				t.Errorf("ParseCommand(%q) name = %q, want %q", tt.input, cmd.Name, tt.wantName)
			}
			if cmd.Arg != tt.wantArg {
				t.Errorf("ParseCommand(%q) arg = %q, want %q", tt.input, cmd.Arg, tt.wantArg)
			}
			if len(cmd.URLs) != len(tt.wantURLs) {
				t.Fatalf("ParseCommand(%q) urls = %v, want %v", tt.input, cmd.URLs, tt.wantURLs)
			}
			for i := range cmd.URLs {
				if cmd.URLs[i] != tt.wantURLs[i] {
					t.Errorf("ParseCommand(%q) url[%d] = %q, want %q", tt.input, i, cmd.URLs[i], tt.wantURLs[i])
				}
			}
		})
	}
}

func TestParser_CustomPrefix(t *testing.T) {
	parser := NewParser("b!")

	if _, ok := parser.ParseCommand("!p https://youtu.be/abc"); ok {
		t.Error("Message with default prefix should be ignored when a custom prefix is configured")
	}

	cmd, ok := parser.ParseCommand("b!p https://youtu.be/abc")
	if !ok {
		t.Fatal("Message with custom prefix should be parsed")
	}
	if cmd.Name != "p" {
		t.Errorf("Expected command name p, got %q", cmd.Name)
	}
}

func TestNewParser_DefaultPrefix(t *testing.T) {
	parser := NewParser("")
	if parser.Prefix() != DefaultPrefix {
		t.Errorf("Expected default prefix %q, got %q", DefaultPrefix, parser.Prefix())
	}
}

func TestCleanURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain URL",
			input:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:     "Tracking parameters removed",
			input:    "https://youtu.be/dQw4w9WgXcQ?si=abcdef&utm_source=share",
			expected: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name:     "Trailing punctuation removed",
			input:    "https://youtu.be/dQw4w9WgXcQ.",
			expected: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name:     "Suppressed embed brackets removed",
			input:    "<https://youtu.be/dQw4w9WgXcQ>",
			expected: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name:     "Not a URL",
			input:    "never gonna give you up",
			expected: "",
		},
		{
			name:     "Missing host",
			input:    "https://",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := CleanURL(tt.input); result != tt.expected {
				t.Errorf("CleanURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
