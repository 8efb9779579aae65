// Package cli provides the interactive iReporter command-line client.
//
// It wires configuration, the local session database, the REST adapters and
// domain services into a REPL. Every command that opens a view goes through
// the route guard first, and the surrounding chrome (offline banner,
// notification bell, navigation) is recomposed on each navigation.
//
// Background work is limited to the connectivity watcher and, while a user
// is logged in, the notification poller. Both stop when Run returns.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
