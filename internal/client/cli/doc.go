// Package cli provides the interactive CloudVault command-line client.
//
// It wires configuration, the local session store, the file gateway (REST
// API or a direct S3 bucket) and the file session controller behind a REPL.
// Typical flow: restore the persisted session or log in, list files, then
// upload, download, preview, share or delete them.
//
// The REPL is the presentation layer: it forwards commands to the
// controller, supplies the delete confirmation, clipboard, browser and
// download-directory capabilities, and prints the session notice after
// every command.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
