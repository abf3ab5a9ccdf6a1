// Package auth verifies bearer tokens issued by the external identity
// provider and turns them into an Identity.
//
// Tokens are HS256-signed JWTs. Verification checks the signature, expiry,
// issuer and audience; nothing is looked up in the database. Callers get a
// sentinel error they can classify with errors.Is:
//
//	id, err := verifier.Authenticate(r.Header.Get("Authorization"))
//	switch {
//	case errors.Is(err, auth.ErrNotConfigured):
//	    // 500
//	case err != nil:
//	    // 401
//	}
package auth
