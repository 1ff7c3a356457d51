/*
Package auth implements login, registration, and logout on top of the
backend's flat users collection.

The backend stores bcrypt password hashes and has no auth endpoint of
its own, so verification happens client-side: look the user up by email,
compare the hash, persist the session locally. Register refuses emails
that are already taken and never logs the new user in.
*/
package auth
