// Package tor provides Tor network connectivity for torfox.
//
// It covers the three ways a browser session obtains a SOCKS proxy: the Tor
// Browser bundle's own port (checked with a SOCKS5 handshake), an embedded
// daemon started through tornago, or an external proxy supplied by the user.
// It also builds HTTP clients that route through Tor and validates .onion
// hosts before the browser navigates to them.
package tor
