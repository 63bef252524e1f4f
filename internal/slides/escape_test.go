package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeXML_EmptyString(t *testing.T) {
	assert.Equal(t, "", EscapeXML(""))
}

func TestEscapeXML_NoSpecialCharacters(t *testing.T) {
	text := "This is normal text with no special characters"
	assert.Equal(t, text, EscapeXML(text))
}

func TestEscapeXML_SpecialCharacters(t *testing.T) {
	assert.Equal(t, "Base &amp; Bonus &lt;$200K&gt; &quot;total&quot; it&apos;s", EscapeXML(`Base & Bonus <$200K> "total" it's`))
}

func TestEscapeXML_DropsControlCharacters(t *testing.T) {
	assert.Equal(t, "ab\tc\n", EscapeXML("a\x00b\tc\x1b\n"))
}

func TestEscapeXML_UnicodeCharacters(t *testing.T) {
	text := "résumé 💰 α β γ"
	assert.Equal(t, text, EscapeXML(text))
}
