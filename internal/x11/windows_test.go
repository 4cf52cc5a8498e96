package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/icccm"
)

func TestClassMatchesClassPartOnly(t *testing.T) {
	kitty := &icccm.WmClass{Instance: "kitty", Class: "kitty"}
	firefox := &icccm.WmClass{Instance: "Navigator", Class: "firefox"}

	tests := []struct {
		name  string
		wm    *icccm.WmClass
		class string
		want  bool
	}{
		{"class part", kitty, "kitty", true},
		{"class part differs from instance", firefox, "firefox", true},
		{"instance only", firefox, "Navigator", false},
		{"case sensitive", firefox, "Firefox", false},
		{"missing property", nil, "kitty", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classMatches(tt.wm, tt.class); got != tt.want {
				t.Fatalf("classMatches(%+v, %q) = %v, want %v", tt.wm, tt.class, got, tt.want)
			}
		})
	}
}
