package browser

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// FindChrome returns the Chrome executable for this machine, or "" when none is installed.
func FindChrome() string {
	home, _ := os.UserHomeDir()
	return findChrome(runtime.GOOS, home, exec.LookPath, fileExists)
}

// DefaultUserDataDir returns Chrome's standard profile directory for this machine.
func DefaultUserDataDir() string {
	home, _ := os.UserHomeDir()
	return userDataDir(runtime.GOOS, home)
}

func findChrome(goos, home string, lookPath func(string) (string, error), exists func(string) bool) string {
	switch goos {
	case "windows":
		for _, p := range []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			filepath.Join(home, `AppData\Local\Google\Chrome\Application\chrome.exe`),
		} {
			if exists(p) {
				return p
			}
		}
	case "darwin":
		p := "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
		if exists(p) {
			return p
		}
	default:
		for _, name := range []string{"google-chrome", "chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
			if p, err := lookPath(name); err == nil {
				return p
			}
		}
	}
	return ""
}

func userDataDir(goos, home string) string {
	switch goos {
	case "windows":
		return filepath.Join(home, `AppData\Local\Google\Chrome\User Data`)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome")
	}
	return filepath.Join(home, ".config", "google-chrome")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
