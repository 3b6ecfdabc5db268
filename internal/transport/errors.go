package transport

import "errors"

var (
	// ErrInvalidProxyAddress reports a proxy address that is not "host:port"
	// with a port in 1..65535.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrProxyNotSOCKS5 reports a proxy that answered without offering
	// SOCKS5 "no authentication".
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyCannotConnect reports a failed TCP connection to the proxy.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout reports a proxy that did not answer in time.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")

	errUnknownProxyStatus = errors.New("unknown proxy status")
)

// ProxyStatus is the outcome of CheckProxy.
type ProxyStatus int

// CheckProxy outcomes.
const (
	ProxyStatusOK ProxyStatus = iota
	ProxyStatusWrongType
	ProxyStatusCannotConnect
	ProxyStatusTimeout
)

var proxyStatuses = [...]struct {
	text string
	err  error
}{
	ProxyStatusOK:            {"OK", nil},
	ProxyStatusWrongType:     {"wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
	ProxyStatusCannotConnect: {"cannot connect", ErrProxyCannotConnect},
	ProxyStatusTimeout:       {"timeout", ErrProxyTimeout},
}

func (s ProxyStatus) known() bool {
	return s >= 0 && int(s) < len(proxyStatuses)
}

// String implements fmt.Stringer.
func (s ProxyStatus) String() string {
	if !s.known() {
		return "unknown"
	}
	return proxyStatuses[s].text
}

// Error returns the sentinel error for s, or nil for ProxyStatusOK.
func (s ProxyStatus) Error() error {
	if !s.known() {
		return errUnknownProxyStatus
	}
	return proxyStatuses[s].err
}
