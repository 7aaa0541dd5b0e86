// Package session tracks who is signed in and gates actions that need a
// signed-in user.
//
// An action requested while signed out is parked in a single pending slot
// and the login prompt hook fires. When a login succeeds the parked action
// runs once, after a short settle delay so the prompt can close first.
package session
