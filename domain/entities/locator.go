package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Strategy names the way a Locator selects elements. Values match the
// W3C WebDriver location strategies.
type Strategy string

const (
	StrategyID              Strategy = "id"
	StrategyCSS             Strategy = "css selector"
	StrategyXPath           Strategy = "xpath"
	StrategyName            Strategy = "name"
	StrategyClassName       Strategy = "class name"
	StrategyLinkText        Strategy = "link text"
	StrategyPartialLinkText Strategy = "partial link text"
)

// DefaultDataTestAttr is the attribute used by the custom attribute locator.
const DefaultDataTestAttr = "data-test"

// Locator selects zero or more elements of a document
type Locator struct {
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Value    string   `json:"value" yaml:"value"`
}

// ByID - locates elements by their id attribute
func ByID(id string) Locator { return Locator{StrategyID, id} }

// ByCSS - locates elements using a CSS selector
func ByCSS(selector string) Locator { return Locator{StrategyCSS, selector} }

// ByXPath - locates elements using an XPath expression
func ByXPath(xpath string) Locator { return Locator{StrategyXPath, xpath} }

// ByName - locates elements whose name attribute has the given value
func ByName(name string) Locator { return Locator{StrategyName, name} }

// ByClassName - locates elements that have the given class
func ByClassName(name string) Locator { return Locator{StrategyClassName, name} }

// ByLinkText - locates links whose visible text matches exactly
func ByLinkText(text string) Locator { return Locator{StrategyLinkText, text} }

// ByPartialLinkText - locates links whose visible text contains the substring
func ByPartialLinkText(text string) Locator { return Locator{StrategyPartialLinkText, text} }

// ByAttr - locates elements whose attr equals value, as a CSS attribute selector.
// An empty attr falls back to DefaultDataTestAttr.
func ByAttr(attr, value string) Locator {
	if attr == "" {
		attr = DefaultDataTestAttr
	}
	return ByCSS(fmt.Sprintf(`*[%s=%s]`, attr, strconv.Quote(value)))
}

func (l Locator) String() string {
	return fmt.Sprintf("By(%s, %s)", l.Strategy, l.Value)
}

// Validate - checks that the locator is usable
func (l Locator) Validate() error {
	if l.Value == "" {
		return fmt.Errorf("locator %s has an empty value", l)
	}
	switch l.Strategy {
	case StrategyID, StrategyCSS, StrategyXPath, StrategyName,
		StrategyClassName, StrategyLinkText, StrategyPartialLinkText:
		return nil
	}
	return fmt.Errorf("unknown locator strategy %q", string(l.Strategy))
}

// SelectorKind tells whether a translated selector is CSS or XPath.
type SelectorKind int

const (
	SelectorCSS SelectorKind = iota
	SelectorXPath
)

// Selector translates the locator into a plain CSS or XPath expression for
// drivers that have no native WebDriver strategies.
func (l Locator) Selector() (SelectorKind, string) {
	switch l.Strategy {
	case StrategyID:
		return SelectorCSS, fmt.Sprintf(`*[id=%s]`, strconv.Quote(l.Value))
	case StrategyName:
		return SelectorCSS, fmt.Sprintf(`*[name=%s]`, strconv.Quote(l.Value))
	case StrategyClassName:
		return SelectorCSS, "." + cssEscape(l.Value)
	case StrategyXPath:
		return SelectorXPath, l.Value
	case StrategyLinkText:
		return SelectorXPath, fmt.Sprintf(`//a[normalize-space(.)=%s]`, xpathLiteral(l.Value))
	case StrategyPartialLinkText:
		return SelectorXPath, fmt.Sprintf(`//a[contains(., %s)]`, xpathLiteral(l.Value))
	default:
		return SelectorCSS, l.Value
	}
}

func cssEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r > 0x7f:
			b.WriteRune(r)
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+p+`"`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// Special keys for Element.SendKeys, as WebDriver code points.
const (
	KeyEnter     = "\ue007"
	KeyTab       = "\ue004"
	KeyEscape    = "\ue00c"
	KeyBackspace = "\ue003"
)
