package llmparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_StripsNonContent(t *testing.T) {
	html := `<html><head><title>t</title><style>td{color:red}</style></head>
	<body>
	<!-- generated -->
	<script>alert(1)</script>
	<p style="color:blue" class="hd" data-idx="3">[2025학년도] 일반전형</p>
	<table border="1" cellpadding="2" width="100%">
		<tr><td colspan="4" bgcolor="#eee">머리글</td></tr>
		<tr><td valign="top">국어국문학과&nbsp;</td><td>10</td></tr>
	</table>
	</body></html>`

	out := Sanitize(html)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.NotContains(t, out, "generated")
	assert.NotContains(t, out, "style=")
	assert.NotContains(t, out, "class=")
	assert.NotContains(t, out, "data-idx")
	assert.NotContains(t, out, "bgcolor")
	assert.NotContains(t, out, "cellpadding")
	assert.NotContains(t, out, "&nbsp;")

	// Content and table structure survive.
	assert.Contains(t, out, "일반전형")
	assert.Contains(t, out, "국어국문학과")
	assert.Contains(t, out, `colspan="4"`)
}

func TestSanitize_ShrinksPayload(t *testing.T) {
	html := `<html><head><style>` + strings.Repeat("td{color:#fff} ", 400) + `</style></head><body><table><tr><td>x</td></tr></table></body></html>`
	out := Sanitize(html)
	assert.Less(t, len(out), len(html)/4)
}
