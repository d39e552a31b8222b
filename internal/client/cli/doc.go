// Package cli provides the interactive Mindful+ terminal client.
//
// It wires configuration, the session cache, the data-access wrapper and an
// interactive REPL that hosts one ui.Page. Every route change mounts a new
// screen (header plus home, notes or a placeholder, or the sign-in screen
// on public routes) and the page is redrawn after each command and
// whenever a background load delivers.
//
// Key features:
//   - Register (regular or professional), Login, Google sign-in, Logout
//   - Navigation through the adaptive header and its menu
//   - Notes: filters, custom ranges, add, edit, delete, detail
//   - Push-notification activation
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
