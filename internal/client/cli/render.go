package cli

import (
	"fmt"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/vault"
)

func renderFiles(s vault.State) []string {
	switch {
	case s.Loading && len(s.Files) == 0:
		return []string{"Loading files..."}
	case s.Empty():
		return []string{"No files uploaded yet."}
	case s.Fetch == vault.FetchFailed && len(s.Files) == 0:
		return nil
	}

	lines := make([]string, 0, len(s.Files)+1)
	lines = append(lines, fmt.Sprintf("My Files (%d)", len(s.Files)))
	for _, f := range s.Files {
		name := vault.LinkName(f.FileLink)
		marker := ""
		if s.ShareMenuOpenFor(f.ID) {
			marker = "  [share: copy | whatsapp | email]"
		}
		lines = append(lines, fmt.Sprintf("  %-8s %-6s %s%s", f.ID, vault.MediaKindOf(name), name, marker))
	}
	return lines
}

func renderPreview(p vault.Preview) []string {
	lines := []string{
		fmt.Sprintf("Viewing %s (%s)", p.Name, p.Kind),
		"  " + p.Record.FileLink,
	}
	if p.Kind == models.MediaOther {
		lines = append(lines, "  Preview not available for this file type. Use 'open' to open it in the browser.")
	} else {
		lines = append(lines, "  Use 'open' to view it in the browser, 'close' to close the preview.")
	}
	return lines
}

func renderNotice(n vault.Notice) string {
	switch n.Kind {
	case vault.NoticeError:
		return "Error: " + n.Message
	case vault.NoticeSuccess:
		return n.Message
	default:
		return ""
	}
}
