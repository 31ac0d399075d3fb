package domain

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple title", input: "Hello World", want: "hello-world"},
		{name: "punctuation collapses", input: "Hello, World!", want: "hello-world"},
		{name: "already a slug", input: "hello-world", want: "hello-world"},
		{name: "leading and trailing junk", input: "  --Hello--  ", want: "hello"},
		{name: "digits survive", input: "Go 1.24 Notes", want: "go-1-24-notes"},
		{name: "unicode letters survive", input: "Caffè Días", want: "caffè-días"},
		{name: "empty input", input: "", want: ""},
		{name: "only junk", input: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Fatalf("\nwanted:\n%q\ngot:\n%q", tt.want, got)
			}
		})
	}
}
