package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

const help = `Commands:
  open <url> [resolution]         open the page (resolution: max, desktop, mobile, WxH)
  title                           print the document title
  find <by> <value>               locate one element and print its text
  soft <by> <value>               like find, but a missing element is not an error
  all <by> <value>                locate every element and print their texts
  click <by> <value>              locate and click
  type <by> <value> <text>        locate and type text ("\n" submits)
  attr <by> <value> <name>        print an attribute of the element
  disappear <by> <value>          wait until the element is gone
  frame <index> | frame <by> <value>
                                  switch into a frame
  default                         switch back to the top document
  close                           close the window
  quit                            leave the shell
<by> is one of: css, xpath, id, name, class, link, partial, data-test`

type TerminalInterface struct {
	page   interfaces.Page
	logger *logrus.Logger
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminalInterface - creates a shell driving page
func NewTerminalInterface(page interfaces.Page, in io.Reader, out io.Writer, logger *logrus.Logger) *TerminalInterface {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TerminalInterface{
		page:   page,
		logger: logger,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Command is one parsed shell line.
type Command struct {
	Name  string
	By    entities.Locator
	Args  []string
	Frame interfaces.Frame
}

var locatorCommands = map[string]int{
	"find":      0,
	"soft":      0,
	"all":       0,
	"click":     0,
	"type":      1,
	"attr":      1,
	"disappear": 0,
}

// ParseCommand - parses a shell line; dataTest builds data-test locators
func ParseCommand(line string, dataTest func(string) entities.Locator) (Command, error) {
	fields, err := splitArgs(line)
	if err != nil {
		return Command{}, err
	}
	if len(fields) == 0 {
		return Command{}, nil
	}
	cmd := Command{Name: strings.ToLower(fields[0])}
	rest := fields[1:]

	switch cmd.Name {
	case "quit", "exit", "q":
		cmd.Name = "quit"
		return cmd, nil
	case "help", "title", "default", "close":
		return cmd, nil
	case "open":
		if len(rest) < 1 || len(rest) > 2 {
			return cmd, errors.New("usage: open <url> [resolution]")
		}
		cmd.Args = rest
		return cmd, nil
	case "frame":
		if len(rest) == 1 {
			i, err := strconv.Atoi(rest[0])
			if err != nil {
				return cmd, fmt.Errorf("frame index %q: %w", rest[0], err)
			}
			cmd.Frame = interfaces.FrameIndex(i)
			return cmd, nil
		}
		if len(rest) != 2 {
			return cmd, errors.New("usage: frame <index> | frame <by> <value>")
		}
		by, err := locator(rest[0], rest[1], dataTest)
		if err != nil {
			return cmd, err
		}
		cmd.Frame = interfaces.FrameBy(by)
		return cmd, nil
	}

	extra, ok := locatorCommands[cmd.Name]
	if !ok {
		return cmd, fmt.Errorf("unknown command %q, try help", cmd.Name)
	}
	if len(rest) != 2+extra {
		return cmd, fmt.Errorf("%s takes <by> <value>%s", cmd.Name, strings.Repeat(" <arg>", extra))
	}
	cmd.By, err = locator(rest[0], rest[1], dataTest)
	if err != nil {
		return cmd, err
	}
	cmd.Args = rest[2:]
	return cmd, nil
}

func locator(by, value string, dataTest func(string) entities.Locator) (entities.Locator, error) {
	switch strings.ToLower(by) {
	case "css":
		return entities.ByCSS(value), nil
	case "xpath":
		return entities.ByXPath(value), nil
	case "id":
		return entities.ByID(value), nil
	case "name":
		return entities.ByName(value), nil
	case "class":
		return entities.ByClassName(value), nil
	case "link":
		return entities.ByLinkText(value), nil
	case "partial":
		return entities.ByPartialLinkText(value), nil
	case "data-test":
		return dataTest(value), nil
	}
	return entities.Locator{}, fmt.Errorf("unknown locator %q", by)
}

// splitArgs splits on spaces, keeping double-quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		out     []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && quoted && i+1 < len(line):
			i++
			switch line[i] {
			case 'n':
				current.WriteString(entities.KeyEnter)
			case 't':
				current.WriteString(entities.KeyTab)
			default:
				current.WriteByte(line[i])
			}
		case c == '"':
			quoted = !quoted
			started = true
		case (c == ' ' || c == '\t') && !quoted:
			if started {
				out = append(out, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteByte(c)
			started = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if started {
		out = append(out, current.String())
	}
	return out, nil
}

func (t *TerminalInterface) Run(ctx context.Context) error {
	fmt.Fprintln(t.out, "Selenium-Page shell")
	fmt.Fprintln(t.out, "===================")
	fmt.Fprintln(t.out, "Type 'help' for commands, or 'quit' to exit")
	fmt.Fprintln(t.out)

	for {
		fmt.Fprint(t.out, "> ")
		input, err := t.reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || input == "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		cmd, perr := ParseCommand(strings.TrimSpace(input), t.page.DataTest)
		if perr != nil {
			errColor.Fprintf(t.out, "%v\n", perr)
			continue
		}
		if cmd.Name == "quit" {
			fmt.Fprintln(t.out, "Bye!")
			return nil
		}
		if cmd.Name == "" {
			continue
		}

		if err := t.Execute(ctx, cmd); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errColor.Fprintf(t.out, "%v\n", err)
		}
	}
}

// Execute - runs one parsed command against the page
func (t *TerminalInterface) Execute(ctx context.Context, cmd Command) error {
	t.logger.WithField("command", cmd.Name).Debug("Executing shell command")

	switch cmd.Name {
	case "help":
		fmt.Fprintln(t.out, help)
		return nil
	case "open":
		var res []entities.Resolution
		if len(cmd.Args) == 2 {
			r, err := entities.ParseResolution(cmd.Args[1])
			if err != nil {
				return err
			}
			res = append(res, r)
		}
		return t.page.Open(ctx, cmd.Args[0], res...)
	case "title":
		title, err := t.page.Driver().Title(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(t.out, title)
		return nil
	case "default":
		return t.page.SwitchToDefault(ctx)
	case "close":
		return t.page.Close(ctx)
	case "frame":
		return t.page.SwitchToFrame(ctx, cmd.Frame)
	case "disappear":
		if err := t.page.WaitDisappear(ctx, cmd.By); err != nil {
			return err
		}
		okColor.Fprintf(t.out, "%s is gone\n", cmd.By)
		return nil
	case "all":
		found, err := t.page.FindAll(ctx, cmd.By)
		if err != nil {
			return err
		}
		els := found.OrElse(nil)
		for i, el := range els {
			text, _ := el.Text()
			okColor.Fprintf(t.out, "[%d] %s\n", i, text)
		}
		fmt.Fprintf(t.out, "%d element(s)\n", len(els))
		return nil
	}

	var cfg []entities.FindConfig
	if cmd.Name == "soft" {
		cfg = append(cfg, entities.FindConfig{MustFind: null.BoolFrom(false)})
	}
	found, err := t.page.Find(ctx, cmd.By, cfg...)
	if err != nil {
		return err
	}
	el, ok := found.Get()
	if !ok {
		warnColor.Fprintf(t.out, "%s not found\n", cmd.By)
		return nil
	}

	switch cmd.Name {
	case "click":
		return el.Click()
	case "type":
		return el.SendKeys(cmd.Args[0])
	case "attr":
		value, err := el.GetAttribute(cmd.Args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(t.out, value)
		return nil
	}
	text, err := el.Text()
	if err != nil {
		return err
	}
	okColor.Fprintln(t.out, text)
	return nil
}
