package domain

// ReservationStatus is the lifecycle state of a DHCP reservation
type ReservationStatus string

const (
	ReservationStatusPending ReservationStatus = "pending"
	ReservationStatusActive  ReservationStatus = "active"
	ReservationStatusFailed  ReservationStatus = "failed"
)

// DefaultReservationStatus is applied when a reservation is saved without a status
const DefaultReservationStatus = ReservationStatusPending

// Valid reports whether s is one of the known reservation states
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusActive, ReservationStatusFailed:
		return true
	}
	return false
}

// IPAddress represents an address record that reservations point at
type IPAddress struct {
	ID      int64  // Unique identifier
	Address string // Address with prefix length (e.g., "192.168.1.10/24")
	DNSName string // Optional DNS name
}

// DHCPServer describes a remote DHCP server management endpoint
type DHCPServer struct {
	ID        int64  // Unique identifier
	Name      string // Unique server name
	APIToken  string // Credential for the server API, stored only
	APIURL    string // Unique API base URL
	SSLVerify bool   // Verify TLS certificates when talking to APIURL
	CreatedAt string
	UpdatedAt string
}

// NewDHCPServer builds a server record. A nil sslVerify means the default (true).
func NewDHCPServer(name, apiToken, apiURL string, sslVerify *bool) DHCPServer {
	verify := true
	if sslVerify != nil {
		verify = *sslVerify
	}
	return DHCPServer{
		Name:      name,
		APIToken:  apiToken,
		APIURL:    apiURL,
		SSLVerify: verify,
	}
}

// DHCPReservation binds an IP address and a MAC address to a DHCP server
type DHCPReservation struct {
	ID           int64             // Unique identifier
	IPAddressID  int64             // Foreign key to IPAddress
	MACAddress   string            // Colon-separated hardware address, stored lower-case
	Status       ReservationStatus // Defaults to pending
	DHCPServerID int64             // Foreign key to DHCPServer
	Description  string
	CreatedAt    string
	UpdatedAt    string
}
