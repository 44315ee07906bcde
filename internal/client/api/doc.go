// Package api talks to the testing-platform backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (the Client interface) covering the
//     endpoints the client core depends on: staff login, student face
//     login, the exam-start face check, test fetch, and submission.
//  2. A concrete REST implementation (RESTClient) built on resty that owns
//     the default Authorization bearer header. The session store is the
//     only component that sets or clears that header.
//
// # Error Handling
//
// Transport-level failures and common statuses are exposed as sentinel
// errors matched with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrNotFound. Other error responses carry the backend's detail message.
package api
