// Package vault implements the file session of the CloudVault client: the
// in-memory view of the user's files, the operations that change it through
// the remote gateway, and the preview and share-menu state the presentation
// layer renders.
//
// Controller methods block until their gateway call settles and never
// return errors; every outcome lands in the single Notice slot of State.
// Callers that must stay responsive run them in goroutines. Overlapping
// fetches are ordered by a generation counter, so only the most recently
// started fetch updates the listing.
package vault
