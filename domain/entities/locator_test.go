package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "By(css selector, .missing)", ByCSS(".missing").String())
	assert.Equal(t, "By(id, introAgreeButton)", ByID("introAgreeButton").String())
	assert.Equal(t, "By(xpath, //a)", ByXPath("//a").String())
}

func TestByAttr(t *testing.T) {
	assert.Equal(t, ByCSS(`*[data-test="login"]`), ByAttr("", "login"))
	assert.Equal(t, ByCSS(`*[data-qa="say \"hi\""]`), ByAttr("data-qa", `say "hi"`))
}

func TestLocatorValidate(t *testing.T) {
	require.NoError(t, ByName("q").Validate())
	assert.Error(t, ByCSS("").Validate())
	assert.Error(t, Locator{Strategy: "tag", Value: "a"}.Validate())
}

func TestLocatorSelector(t *testing.T) {
	tests := []struct {
		by       Locator
		kind     SelectorKind
		selector string
	}{
		{ByCSS("#search .g"), SelectorCSS, "#search .g"},
		{ByID("main"), SelectorCSS, `*[id="main"]`},
		{ByName("q"), SelectorCSS, `*[name="q"]`},
		{ByClassName("btn.primary"), SelectorCSS, `.btn\.primary`},
		{ByXPath("//iframe"), SelectorXPath, "//iframe"},
		{ByLinkText("Sign in"), SelectorXPath, `//a[normalize-space(.)="Sign in"]`},
		{ByPartialLinkText("Sign"), SelectorXPath, `//a[contains(., "Sign")]`},
	}
	for _, tc := range tests {
		t.Run(tc.by.String(), func(t *testing.T) {
			kind, selector := tc.by.Selector()
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.selector, selector)
		})
	}
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `"it's"`, xpathLiteral("it's"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `concat("it's ", '"', "x", '"', "")`, xpathLiteral(`it's "x"`))
}
