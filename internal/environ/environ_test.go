package environ

import (
	"strings"
	"testing"
)

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		env      map[string]string
		want     string
	}{
		{
			name:     "shell set",
			platform: "Linux-5.4.0",
			env:      map[string]string{"SHELL": "/bin/bash"},
			want:     "OS: Linux-5.4.0, SHELL: /bin/bash",
		},
		{
			name:     "no shell available",
			platform: "Darwin-21.0",
			env:      map[string]string{},
			want:     "OS: Darwin-21.0",
		},
		{
			name:     "comspec on windows",
			platform: "Windows-10",
			env:      map[string]string{"COMSPEC": `C:\Windows\System32\cmd.exe`},
			want:     `OS: Windows-10, SHELL: C:\Windows\System32\cmd.exe`,
		},
		{
			name:     "shell wins over comspec",
			platform: "Linux-5.4.0",
			env:      map[string]string{"SHELL": "/bin/zsh", "COMSPEC": "cmd.exe"},
			want:     "OS: Linux-5.4.0, SHELL: /bin/zsh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.platform, envFrom(tt.env)); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContextStartsWithPlatform(t *testing.T) {
	t.Setenv("SHELL", "/bin/sh")

	got := Context()
	if !strings.HasPrefix(got, "OS: "+Platform()) {
		t.Errorf("Context() = %q", got)
	}
	if !strings.HasSuffix(got, "SHELL: /bin/sh") {
		t.Errorf("Context() = %q, want shell suffix", got)
	}
	if Platform() == "" {
		t.Error("Platform() is empty")
	}
}
