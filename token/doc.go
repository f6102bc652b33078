// Package token inspects bearer credentials issued by the ktx API.
//
// The client never verifies signatures — the server is the only authority
// on credential validity, and expiry is learned through authorization
// failures on real requests. Inspection exists purely to annotate session
// lists with subject, role, and expiry, so it parses without verification
// and treats any unparseable credential as opaque.
package token
