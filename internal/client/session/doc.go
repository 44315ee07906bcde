// Package session owns the client's authentication state.
//
// # Overview
//
// The package provides:
//  1. Store — the single source of truth for the current session. It is the
//     only writer of the persisted token and of the outbound credential
//     header, and it notifies subscribers synchronously on every state
//     transition.
//  2. ResolveRole — the ordered policy that derives a Role from token
//     claims, including the documented legacy fallback.
//  3. Decide — a pure route-guard function mapping (state, role, required
//     roles) to a navigation decision.
//
// # State machine
//
// Store moves through Uninitialized → Loading → {Anonymous, Authenticated}.
// Loading is entered only during Init and completes before Init returns;
// afterwards every transition goes directly between Anonymous and
// Authenticated via SetSession/ClearSession.
//
// Both login variants (staff password login and student face login) must
// funnel through SetSession. Persisting a token anywhere else leaves the
// store reporting Anonymous while storage holds a valid token, which is
// exactly the inconsistency this package exists to rule out.
package session
