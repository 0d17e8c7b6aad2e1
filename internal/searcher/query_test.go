package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Foo", "foo"},
		{"  Foo Bar  ", "foo bar"},
		{"\tSTD.Stdio\n", "std.stdio"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.raw), "raw %q", tt.raw)
	}
}

func TestTokenize(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Equal(t, []string{"foo"}, Tokenize("foo"))
	assert.Equal(t, []string{"foo", "bar"}, Tokenize("foo   bar"))
	assert.Equal(t, []string{"foo", "bar", "baz"}, Tokenize("foo \t bar\nbaz"))
}

func TestTooBroad(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		want  bool
	}{
		{"NoTerms", nil, true},
		{"SingleCharacter", []string{"a"}, true},
		{"TwoCharacters", []string{"ab"}, false},
		{"TwoSingleCharacterTerms", []string{"a", "b"}, false},
		{"LongThenShort", []string{"file", "a"}, false},
		{"MultiByteSingleRune", []string{"é"}, true},
		{"MultiByteTwoRunes", []string{"éé"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TooBroad(tt.terms))
		})
	}
}

func TestMatches(t *testing.T) {
	name := "std.stdio.file.open"

	assert.True(t, Matches(name, []string{"file"}))
	assert.True(t, Matches(name, []string{"file", "open"}))
	assert.True(t, Matches(name, []string{"open", "std"}), "term order is irrelevant")
	assert.True(t, Matches(name, []string{"o.op"}), "no word boundary requirement")
	assert.False(t, Matches(name, []string{"file", "close"}), "all terms must match")
	assert.False(t, Matches(name, []string{"fiel"}), "no fuzzy matching")
	assert.True(t, Matches(name, nil))
}
