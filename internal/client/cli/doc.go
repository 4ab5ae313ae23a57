// Package cli implements the interactive console of the plaque registration
// tool: a REPL over the auth and data stores with prompts, input validation
// and role gating.
//
// Anonymous sessions may only use help, login, register and exit. User
// management (users, adduser, edituser, deluser) is reserved to
// administrators.
package cli
