package google

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/guregu/null.v3"

	"selenium_page/domain/entities"
	"selenium_page/domain/interfaces"
)

// URL is where Open goes by default.
const URL = "https://google.com"

// settle gives the page time to finish its own scripts after navigation.
const settle = 500 * time.Millisecond

var (
	consentFrame  = entities.ByXPath("//iframe[contains(@src, 'consent.google.com')]")
	agreeButton   = entities.ByID("introAgreeButton")
	searchInput   = entities.ByCSS("input[title='Search'], textarea[name='q']")
	searchResults = entities.ByCSS("#search .g")
)

// Page is the Google search page object.
type Page struct {
	interfaces.Page
	settle time.Duration
}

// New - wraps a page session as a Google page
func New(p interfaces.Page) *Page {
	return &Page{Page: p, settle: settle}
}

// Open - navigates to Google (or url) and lets the page settle
func (g *Page) Open(ctx context.Context, url ...string) error {
	target := URL
	if len(url) > 0 && url[0] != "" {
		target = url[0]
	}
	if err := g.Page.Open(ctx, target); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(g.settle):
		return nil
	}
}

// AcceptConsent - clicks through the privacy dialog when it is shown
func (g *Page) AcceptConsent(ctx context.Context) error {
	found, err := g.Find(ctx, consentFrame, entities.FindConfig{
		Message:  null.StringFrom("iFrame Consent not found"),
		MustFind: null.BoolFrom(false),
	})
	if err != nil {
		return err
	}
	frame, ok := found.Get()
	if !ok {
		return nil
	}

	if err := g.SwitchToFrame(ctx, interfaces.FrameElement(frame)); err != nil {
		return err
	}
	if err := g.WaitDisappear(ctx, consentFrame); err != nil {
		return err
	}
	agree, err := g.Find(ctx, agreeButton, entities.Msg("Button 'I Agree' not found"))
	if err != nil {
		return err
	}
	if err := agree.MustGet().Click(); err != nil {
		return fmt.Errorf("failed to accept consent: %w", err)
	}
	return g.SwitchToDefault(ctx)
}

// SearchFor - submits a query and returns the result blocks
func (g *Page) SearchFor(ctx context.Context, text string) ([]interfaces.Element, error) {
	input, err := g.Find(ctx, searchInput, entities.Msg("Input Search not found"))
	if err != nil {
		return nil, err
	}
	if err := input.MustGet().SendKeys(text); err != nil {
		return nil, fmt.Errorf("failed to type query: %w", err)
	}
	input, err = g.Find(ctx, searchInput, entities.Msg("Input Search not found"))
	if err != nil {
		return nil, err
	}
	if err := input.MustGet().SendKeys(entities.KeyEnter); err != nil {
		return nil, fmt.Errorf("failed to submit query: %w", err)
	}

	results, err := g.FindAll(ctx, searchResults, entities.Msg("Individual results not found"))
	if err != nil {
		return nil, err
	}
	return results.MustGet(), nil
}

// ResultTexts - returns the inner text of every element
func ResultTexts(els []interfaces.Element) ([]string, error) {
	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.GetAttribute("innerText")
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}
