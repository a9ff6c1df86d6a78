package domain

import (
	"fmt"
	"net/netip"
	"regexp"
	"sort"
	"strings"
)

// macAddressPattern accepts exactly six colon-separated octets of two hex digits.
var macAddressPattern = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}$`)

// ValidationError collects field level validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidMACAddress reports whether mac is six colon-separated two-digit hex octets.
func IsValidMACAddress(mac string) bool {
	return macAddressPattern.MatchString(mac)
}

// NormalizeMACAddress returns the form used as the uniqueness key.
func NormalizeMACAddress(mac string) string {
	return strings.ToLower(strings.TrimSpace(mac))
}

// NormalizeAddress returns the canonical prefix text used as the uniqueness
// key, so "2001:DB8::1/64" and "2001:db8:0::1/64" are the same address. Host
// bits are kept. Input that does not parse is only trimmed.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	prefix, err := netip.ParsePrefix(address)
	if err != nil {
		return address
	}
	return prefix.String()
}

// Validate checks a reservation the way a full model clean would. It does not
// touch the database, so uniqueness is left to save time.
func (r DHCPReservation) Validate() error {
	verr := &ValidationError{}

	if r.IPAddressID == 0 {
		verr.add("ip_address", "this field is required")
	}
	if r.DHCPServerID == 0 {
		verr.add("dhcp_server", "this field is required")
	}
	switch {
	case r.MACAddress == "":
		verr.add("mac_address", "this field is required")
	case !IsValidMACAddress(r.MACAddress):
		verr.add("mac_address", fmt.Sprintf("%q is not a valid MAC address (expected xx:xx:xx:xx:xx:xx)", r.MACAddress))
	}
	if r.Status != "" && !r.Status.Valid() {
		verr.add("status", fmt.Sprintf("%q is not a valid status", r.Status))
	}

	return verr.orNil()
}

// Validate checks the required server fields.
func (s DHCPServer) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(s.Name) == "" {
		verr.add("name", "this field is required")
	}
	if s.APIToken == "" {
		verr.add("api_token", "this field is required")
	}
	if strings.TrimSpace(s.APIURL) == "" {
		verr.add("api_url", "this field is required")
	}

	return verr.orNil()
}

// Validate checks that the address is in prefix notation.
func (a IPAddress) Validate() error {
	verr := &ValidationError{}

	if a.Address == "" {
		verr.add("address", "this field is required")
	} else if _, err := netip.ParsePrefix(a.Address); err != nil {
		verr.add("address", fmt.Sprintf("%q is not a valid address with prefix length", a.Address))
	}

	return verr.orNil()
}
