package locks

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Call describes the invocation a lock or throttle is keyed on.
type Call struct {
	ClientIP string
	Args     map[string]any
}

// Identity derives the per-caller part of a lock or throttle key.
type Identity func(call Call) string

// ByClientIP keys on the caller's address. It is the default.
func ByClientIP() Identity {
	return func(call Call) string {
		return call.ClientIP
	}
}

// ByField keys on one argument of the call, e.g. the id of the resource being changed.
func ByField(name string) Identity {
	return func(call Call) string {
		value, ok := call.Args[name]
		if !ok || value == nil {
			return ""
		}
		return fmt.Sprint(value)
	}
}

// ByFunc keys on whatever fn derives from the call.
func ByFunc(fn func(call Call) string) Identity {
	return fn
}

func (id Identity) resolve(call Call) string {
	if id == nil {
		return call.ClientIP
	}
	return id(call)
}

// ClientIP returns the first X-Forwarded-For entry, else the peer address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
