// Package cli implements the interactive TripKeeper command-line client.
//
// # Overview
//
// The package wires the full client stack (HTTP API client, identity
// provider, polling document store, session controller, reminder scheduler
// and feed) into an App, and drives it through a small read-eval-print
// loop.
//
// The REPL exposes three command sets depending on session state:
//
//	Signed out:       register, login, exit
//	Awaiting gate:    verify, confirm, skip, logout, exit
//	Authenticated:    trips, addtrip, deltrip, share, addloc, delloc,
//	                  addflight, attach, download, feed, read, clearfeed,
//	                  logout, exit
//
// "Awaiting gate" is the state after sign-in while the email is unverified
// and the user has not chosen to proceed without verifying.
//
// Interactive input goes through small helpers (GetSimpleText, GetPassword)
// with test seams, so command handlers stay scriptable in tests.
package cli
