/*
Package session holds the authenticated user's identity in a small
bbolt-backed store.

The core consumes it through two questions: "am I logged in" and "who am
I" (CurrentUserID). pkg/auth writes the session on login and clears it on
logout.
*/
package session
