// Package playwright adapts playwright-go pages, frames and element handles to
// the pageobject.Context interface and launches the browser sessions they
// come from.
//
//	s, err := playwright.Launch(playwright.Options{Headless: true})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.Navigate("https://example.com"); err != nil {
//	    return err
//	}
//	page := pageobject.Create[SearchPage](s.Root())
//
// Waiting uses the "attached" state, so an element counts as present as soon
// as it is in the DOM, visible or not.
package playwright
