// Package cli provides the interactive Babel Edit command-line client.
//
// It wires configuration, the session store, the authenticated API client,
// services, and an interactive REPL. Typical flow: restore a stored session,
// start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout / Whoami
//   - Browse the catalog (products, product)
//   - Raw GETs against any endpoint and a concurrent bench
//   - Image upload for back-office users
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
