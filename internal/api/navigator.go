package api

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Navigator performs the client's full-page navigations: the forced jump to
// the login surface on session loss and the hand-off to a payment provider's
// hosted page.  Injected so tests can record navigations instead of spawning
// a browser.
type Navigator interface {
	Open(url string) error
}

// BrowserNavigator opens URLs in the system browser.
type BrowserNavigator struct{}

func (BrowserNavigator) Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// PrintNavigator writes the URL to stdout instead of opening it, for headless
// environments.
type PrintNavigator struct{}

func (PrintNavigator) Open(url string) error {
	_, err := fmt.Println("open in your browser:", url)
	return err
}
