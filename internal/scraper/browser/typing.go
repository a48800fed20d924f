package browser

import (
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

// TypeHuman types text one key at a time with 50-150ms pauses.
func TypeHuman(el *rod.Element, text string) error {
	for _, char := range text {
		if err := el.Type(input.Key(char)); err != nil {
			return err
		}
		time.Sleep(time.Duration(50+rand.Intn(100)) * time.Millisecond)
	}
	return nil
}

// TypeFast sends every key event of text in one call.
func TypeFast(el *rod.Element, text string) error {
	keys := make([]input.Key, 0, len(text))
	for _, char := range text {
		keys = append(keys, input.Key(char))
	}
	return el.Type(keys...)
}

// Fill replaces the value of an input with text. The field keeps focus
// so the portal's key handlers see the edit.
func Fill(el *rod.Element, text string, human bool) error {
	if err := el.Focus(); err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	if err := el.Input(""); err != nil {
		return err
	}

	if human {
		return TypeHuman(el, text)
	}
	return TypeFast(el, text)
}
