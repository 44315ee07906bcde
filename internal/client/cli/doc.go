// Package cli implements the interactive terminal client for the testing
// platform.
//
// The App wires the session store, the API client, and the camera together
// and drives a read–eval–print loop. Which commands are available depends
// on where the user is: logged out (login, studentlogin), logged in
// (tests, start, logout), or inside an exam attempt (answer, next, prev,
// goto, board, submit, cancel).
//
// Interactive input goes through seam variables (getSimpleText,
// getPassword, printlnFn) so command handlers are testable without a
// terminal.
package cli
