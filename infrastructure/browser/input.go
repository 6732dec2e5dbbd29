package browser

import (
	"strings"

	"selenium_page/domain/entities"
)

// specialKeys maps WebDriver key code points onto DOM key names.
var specialKeys = map[rune]string{
	[]rune(entities.KeyEnter)[0]:     "Enter",
	[]rune(entities.KeyTab)[0]:       "Tab",
	[]rune(entities.KeyEscape)[0]:    "Escape",
	[]rune(entities.KeyBackspace)[0]: "Backspace",
}

// keyStroke is either plain text or a single named key.
type keyStroke struct {
	text string
	key  string
}

// splitKeys - cuts text into plain runs and named special keys, in order
func splitKeys(text string) []keyStroke {
	var out []keyStroke
	var run strings.Builder
	for _, r := range text {
		name, ok := specialKeys[r]
		if !ok {
			run.WriteRune(r)
			continue
		}
		if run.Len() > 0 {
			out = append(out, keyStroke{text: run.String()})
			run.Reset()
		}
		out = append(out, keyStroke{key: name})
	}
	if run.Len() > 0 {
		out = append(out, keyStroke{text: run.String()})
	}
	return out
}

// splitHeadless - pulls the headless switch out of chromium/firefox style args
func splitHeadless(args []string) (bool, []string) {
	headless := false
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "headless" {
			headless = true
			continue
		}
		rest = append(rest, arg)
	}
	return headless, rest
}
