package security

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain channel name", in: "muse_eeg_tp9", want: "muse_eeg_tp9"},
		{name: "spaces collapse to underscore", in: "my device name", want: "my_device_name"},
		{name: "path separators replaced", in: "../../etc/passwd", want: "etc_passwd"},
		{name: "run of bad characters collapses", in: "a%$#!b", want: "a_b"},
		{name: "dots and dashes kept", in: "dev-1.log", want: "dev-1.log"},
		{name: "leading and trailing junk trimmed", in: "__name__", want: "name"},
		{name: "empty input", in: "", want: "unknown"},
		{name: "only bad characters", in: "///", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := make([]byte, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'a')
	}
	got := SanitizeFilename(string(long))
	if len(got) > 128 {
		t.Errorf("len = %d, want at most 128", len(got))
	}
}
