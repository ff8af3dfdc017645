package perftop

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// URLOptions are the resolved parts of a request against an endpoint
type URLOptions struct {
	Scheme string
	Host   string
	Port   int
	Auth   *url.Userinfo
	Path   string
	Query  string
}

// ParseURLOptions resolves path against endpoint.
// Endpoints without a scheme are treated as http. Ports default to 80 for
// http and 443 for https. An absolute path replaces any path on the endpoint.
func ParseURLOptions(endpoint, path string) (URLOptions, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return URLOptions{}, newError(ErrConfig, "endpoint is empty")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return URLOptions{}, wrapError(err, ErrConfig, "invalid endpoint %q", endpoint)
	}
	if base.Hostname() == "" {
		return URLOptions{}, newError(ErrConfig, "endpoint %q has no host", endpoint)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return URLOptions{}, wrapError(err, ErrConfig, "invalid request path %q", path)
	}
	resolved := base.ResolveReference(ref)

	port, err := resolvePort(resolved)
	if err != nil {
		return URLOptions{}, err
	}

	return URLOptions{
		Scheme: resolved.Scheme,
		Host:   resolved.Hostname(),
		Port:   port,
		Auth:   resolved.User,
		Path:   resolved.Path,
		Query:  resolved.RawQuery,
	}, nil
}

func resolvePort(u *url.URL) (int, error) {
	if raw := u.Port(); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return 0, newError(ErrConfig, "invalid port %q in endpoint", raw)
		}
		return port, nil
	}
	if u.Scheme == "https" {
		return 443, nil
	}
	return 80, nil
}

// BaseURL is scheme, credentials, host and port without a path.
func (o URLOptions) BaseURL() *url.URL {
	return &url.URL{
		Scheme: o.Scheme,
		User:   o.Auth,
		Host:   net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
	}
}

// URL is the complete request URL.
func (o URLOptions) URL() *url.URL {
	u := o.BaseURL()
	u.Path = o.Path
	u.RawQuery = o.Query
	return u
}

func (o URLOptions) String() string {
	return fmt.Sprintf("%s://%s:%d%s", o.Scheme, o.Host, o.Port, o.requestURI())
}

func (o URLOptions) requestURI() string {
	if o.Query == "" {
		return o.Path
	}
	return o.Path + "?" + o.Query
}
