package ui

import tea "github.com/charmbracelet/bubbletea"

// --- Key Constants ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func isQuit(msg tea.KeyMsg) bool {
	return isKey(msg, "q", "ctrl+c")
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "escape", "ctrl+[")
}

func isUp(msg tea.KeyMsg) bool {
	return isKey(msg, "up")
}

func isDown(msg tea.KeyMsg) bool {
	return isKey(msg, "down")
}

// isUpVim and isDownVim also accept k/j when vim keys are enabled.
func isUpVim(msg tea.KeyMsg, vim bool) bool {
	return isUp(msg) || (vim && isKey(msg, "k"))
}

func isDownVim(msg tea.KeyMsg, vim bool) bool {
	return isDown(msg) || (vim && isKey(msg, "j"))
}

func isPageUp(msg tea.KeyMsg) bool {
	return isKey(msg, "pgup", "ctrl+u")
}

func isPageDown(msg tea.KeyMsg) bool {
	return isKey(msg, "pgdown", "ctrl+d")
}

func isEnter(msg tea.KeyMsg) bool {
	return isKey(msg, "enter", "return")
}

func isSpace(msg tea.KeyMsg) bool {
	return isKey(msg, " ")
}

// isTab reports whether msg is the digit shortcut for tab n (1-based).
func isTab(msg tea.KeyMsg, n int) bool {
	if n < 1 || n > 9 {
		return false
	}
	return isKey(msg, string(rune('0'+n)))
}
