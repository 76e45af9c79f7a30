// Package gotrue implements identity.Provider against a GoTrue compatible
// authentication server (such as the one bundled with Supabase).
//
// Only two endpoints are used: password signup and the password grant of
// the token endpoint. Sessions issued by the provider are discarded; the
// service issues its own tokens once the provider has vouched for the
// credentials.
package gotrue
