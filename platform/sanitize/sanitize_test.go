package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Acme Corp", want: "Acme Corp"},
		{name: "tags", in: "<b>Acme</b> Corp", want: "Acme Corp"},
		{name: "encoded tag", in: "&lt;script&gt;alert(1)&lt;/script&gt;Acme", want: "alert(1)Acme"},
		{name: "entities kept as text", in: "Smith &amp; Sons", want: "Smith & Sons"},
		{name: "whitespace", in: "  Acme \n\t Corp  ", want: "Acme Corp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestMultilineKeepsLineBreaks(t *testing.T) {
	in := "Focus on <i>EMEA</i>  \r\nIgnore subsidiaries\n"
	assert.Equal(t, "Focus on EMEA\nIgnore subsidiaries", Multiline(in))
}
