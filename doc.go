// Package auth implements password authentication, bearer-token issuance
// and verification, and per-request workspace scoping for multi-tenant
// applications backed by row-level security policies.
//
// The package is organized around a small set of collaborators: a
// credential store and workspace resolver over bun, a dual token codec
// (short-lived pre-auth tokens and session tokens), an environment-gated
// debug bypass, the login protocol that orchestrates them, and a tenant
// context binder that scopes one pooled connection to one request.
package auth
