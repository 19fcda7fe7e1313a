package extractor

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTitles(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "sentinel only", text: NoTitlesSentinel, want: []string{}},
		{name: "sentinel with whitespace", text: "  " + NoTitlesSentinel + " \n\n", want: []string{}},
		{name: "two titles", text: "Inception\nMatrix of Nowhere", want: []string{"Inception", "Matrix of Nowhere"}},
		{name: "trims and skips blank lines", text: "\n  Alien \n\n\tHeat\t\n", want: []string{"Alien", "Heat"}},
		{name: "windows line endings", text: "Alien\r\nHeat\r\n", want: []string{"Alien", "Heat"}},
		{name: "keeps duplicates", text: "Heat\nHeat", want: []string{"Heat", "Heat"}},
		{name: "sentinel among titles", text: "Heat\n" + NoTitlesSentinel + "\nAlien", want: []string{"Heat", "Alien"}},
		{name: "sentinel as substring is a title", text: NoTitlesSentinel + " here", want: []string{NoTitlesSentinel + " here"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTitles(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTitles(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTitles_Idempotent(t *testing.T) {
	inputs := []string{
		"Inception\n\n  Matrix of Nowhere  \n",
		"  Heat\r\n" + NoTitlesSentinel + "\nHeat\n",
		"",
	}

	for _, in := range inputs {
		first := ParseTitles(in)
		second := ParseTitles(strings.Join(first, "\n"))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("re-splitting changed the result: %q -> %q", first, second)
		}
	}
}
