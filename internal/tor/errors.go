package tor

import "errors"

var (
	// ErrInvalidProxyAddress reports a proxy address that is not "host:port".
	ErrInvalidProxyAddress = errors.New("tor proxy address must be host:port")
	// ErrProxyNotTor reports a listener that answered but is not a Tor SOCKS5 port.
	ErrProxyNotTor = errors.New("tor proxy answered but is not tor")
	// ErrProxyCannotConnect reports a proxy port that refused or dropped the connection.
	ErrProxyCannotConnect = errors.New("tor proxy is not reachable")
	// ErrProxyTimeout reports a proxy that did not answer in time.
	ErrProxyTimeout = errors.New("tor proxy did not answer in time")

	ErrInvalidOnionAddress = errors.New("invalid onion address")
	// ErrV2AddressDeprecated reports a 16-character v2 onion host; the
	// network dropped v2 services in 2021.
	ErrV2AddressDeprecated = errors.New("v2 onion addresses no longer resolve")
)

// ProxyStatus is the outcome of a SOCKS5 handshake check.
type ProxyStatus int

// Proxy check outcomes.
const (
	ProxyStatusOK ProxyStatus = iota
	ProxyStatusWrongType
	ProxyStatusCannotConnect
	ProxyStatusTimeout
)

var proxyStatuses = map[ProxyStatus]struct {
	name string
	err  error
}{
	ProxyStatusOK:            {"OK", nil},
	ProxyStatusWrongType:     {"wrong type (not Tor)", ErrProxyNotTor},
	ProxyStatusCannotConnect: {"cannot connect", ErrProxyCannotConnect},
	ProxyStatusTimeout:       {"timeout", ErrProxyTimeout},
}

var errUnknownProxyStatus = errors.New("unknown tor proxy status")

func (s ProxyStatus) String() string {
	if st, ok := proxyStatuses[s]; ok {
		return st.name
	}
	return "unknown"
}

// Error returns the sentinel matching s, or nil for ProxyStatusOK.
func (s ProxyStatus) Error() error {
	if st, ok := proxyStatuses[s]; ok {
		return st.err
	}
	return errUnknownProxyStatus
}
