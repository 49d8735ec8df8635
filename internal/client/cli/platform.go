package cli

import (
	"github.com/atotto/clipboard"
	"github.com/dmitrijs2005/cloudvault/internal/client/vault"
	"github.com/pkg/browser"
)

// Platform capabilities behind the share actions. Package variables so
// tests never touch the real clipboard or browser.
var (
	systemClipboard vault.Clipboard = vault.ClipboardFunc(clipboard.WriteAll)
	systemOpener    vault.Opener    = vault.OpenerFunc(browser.OpenURL)
)
