package cli

import (
	"testing"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFiles(t *testing.T) {
	assert.Equal(t, []string{"Loading files..."}, renderFiles(vault.State{Fetch: vault.FetchLoading, Loading: true}))
	assert.Equal(t, []string{"No files uploaded yet."}, renderFiles(vault.State{Fetch: vault.FetchPopulated}))
	assert.Empty(t, renderFiles(vault.State{Fetch: vault.FetchFailed}), "the error notice speaks for a failed fetch")

	lines := renderFiles(vault.State{
		Fetch:         vault.FetchPopulated,
		Files:         []models.FileRecord{{ID: "7", FileLink: "https://b.s3.amazonaws.com/pics/cat.PNG"}},
		ShareMenu:     "7",
		ShareMenuOpen: true,
	})
	require.Len(t, lines, 2)
	assert.Equal(t, "My Files (1)", lines[0])
	assert.Contains(t, lines[1], "image")
	assert.Contains(t, lines[1], "cat.PNG")
	assert.Contains(t, lines[1], "[share: copy | whatsapp | email]")
}

func TestRenderPreview(t *testing.T) {
	lines := renderPreview(vault.Preview{
		Record: models.FileRecord{FileLink: "https://b.s3.amazonaws.com/clip.mp4"},
		Name:   "clip.mp4",
		Kind:   models.MediaVideo,
	})
	assert.Equal(t, "Viewing clip.mp4 (video)", lines[0])
	assert.NotContains(t, lines[2], "not available")
}

func TestRenderNotice(t *testing.T) {
	assert.Equal(t, "Error: Delete failed", renderNotice(vault.Notice{Kind: vault.NoticeError, Message: "Delete failed"}))
	assert.Equal(t, "Done", renderNotice(vault.Notice{Kind: vault.NoticeSuccess, Message: "Done"}))
	assert.Empty(t, renderNotice(vault.Notice{}))
}
