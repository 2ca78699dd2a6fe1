package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "ILUMINACAO", Fold("Iluminação"))
	assert.Equal(t, "LAMPADA LED", Fold("  lâmpada LED "))
	assert.Equal(t, "", Fold(""))
}

func TestMatcher(t *testing.T) {
	m := Matcher{Substrings: []string{"CLIM"}, Words: []string{"AR"}}

	tests := []struct {
		text string
		want bool
	}{
		{"Climatização", true},
		{"Ar condicionado split", true},
		{"AR-CONDICIONADO", true},
		{"Luminária", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.text))
		})
	}
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Geladeira duplex", []string{"geladeira"}))
	assert.False(t, ContainsAny("Monitor", []string{"GELADEIRA"}))
	assert.False(t, ContainsAny("Monitor", nil))
}
