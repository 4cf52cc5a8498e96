package platform

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{"both empty", Query{}, true},
		{"class only", Query{Class: "Notepad"}, false},
		{"title only", Query{Title: "a.txt - Notepad"}, false},
		{"both set", Query{Class: "Notepad", Title: "a.txt - Notepad"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuery) {
					t.Fatalf("Validate() = %v, want ErrInvalidQuery", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestQueryMatches(t *testing.T) {
	tests := []struct {
		q            Query
		class, title string
		want         bool
	}{
		{Query{Class: "kitty"}, "kitty", "anything", true},
		{Query{Class: "kitty"}, "Kitty", "anything", false},
		{Query{Title: "vim"}, "kitty", "vim", true},
		{Query{Title: "vim"}, "kitty", "vim - main.go", false},
		{Query{Class: "kitty", Title: "vim"}, "kitty", "vim", true},
		{Query{Class: "kitty", Title: "vim"}, "xterm", "vim", false},
	}
	for _, tt := range tests {
		if got := tt.q.Matches(tt.class, tt.title); got != tt.want {
			t.Errorf("%v.Matches(%q, %q) = %v, want %v", tt.q, tt.class, tt.title, got, tt.want)
		}
	}
}

func TestErrorIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("resolve: %w", NotFound("Notepad", ""))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped not-found error to match ErrNotFound")
	}
	if errors.Is(err, ErrWindowNotExist) {
		t.Fatalf("not-found error must not match ErrWindowNotExist")
	}
	if KindOf(err) != KindNotFound {
		t.Fatalf("KindOf() = %v, want %v", KindOf(err), KindNotFound)
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected KindUnknown for a plain error")
	}
}

func TestCallFailedMessage(t *testing.T) {
	cause := errors.New("access denied")
	err := CallFailed("SetWindowPos", Handle(0x1A2B), 5, cause)

	msg := err.Error()
	for _, want := range []string{"SetWindowPos failed", "0x1A2B", "code 5", "access denied"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected CallFailed to unwrap to its cause")
	}
	if !errors.Is(err, ErrPlatformCallFailed) {
		t.Fatalf("expected CallFailed to match ErrPlatformCallFailed")
	}
}

func TestParseErrorKindRoundTrip(t *testing.T) {
	for _, k := range []ErrorKind{KindInvalidQuery, KindNotFound, KindWindowNotExist, KindPlatformCallFailed, KindUnsupported} {
		if got := ParseErrorKind(k.String()); got != k {
			t.Errorf("ParseErrorKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if ParseErrorKind("bogus") != KindUnknown {
		t.Fatalf("expected unknown kind for unrecognized name")
	}
}

func TestInvalidArgumentMessage(t *testing.T) {
	err := InvalidArgument("move", errors.New("width must be > 0"))
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("InvalidArgument should match ErrInvalidQuery")
	}
	if got, want := err.Error(), "invalid move request: width must be > 0"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
