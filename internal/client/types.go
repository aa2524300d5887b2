package client

// Page is one page of a paginated collection. An empty Next marks the last page.
type Page[T any] struct {
	Items []T
	Next  string
}

// Server represents a package (virtual server) from /cloud/server and /cloud/servers.
type Server struct {
	MBPkgID     int    `json:"mbpkgid"`
	FQDN        string `json:"fqdn"`
	DomUPackage string `json:"domu_package"`
	LocationID  int    `json:"location_id"`
	Installed   int    `json:"installed"`
	PrimaryIPv4 string `json:"primary_ipv4,omitempty"`
	PrimaryIPv6 string `json:"primary_ipv6,omitempty"`
	OSID        int    `json:"os_id,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Job represents a provisioning job entry from /cloud/serverjobs.
type Job struct {
	ID       int    `json:"id"`
	MBPkgID  int    `json:"mbpkgid"`
	TSInsert string `json:"ts_insert"`
	Status   string `json:"status"`
	Command  string `json:"command"`
}

// IPAddress represents an address entry from /cloud/ipv4 or /cloud/ipv6.
type IPAddress struct {
	ID      int    `json:"id"`
	Primary int    `json:"primary"`
	Reverse string `json:"reverse"`
	IP      string `json:"ip"`
	Gateway string `json:"gateway"`
	Netmask string `json:"netmask"`
}

// ServerStatus represents the response from /cloud/status.
type ServerStatus struct {
	MBPkgID int    `json:"mbpkgid,omitempty"`
	Status  string `json:"status"`
}

// Location represents a datacenter from /cloud/locations.
type Location struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IATACode  string `json:"iata_code"`
	Continent string `json:"continent"`
	Flag      string `json:"flag"`
	Disabled  int    `json:"disabled"`
}

// Package represents an orderable plan from /cloud/packages.
type Package struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	RAMMB    int64  `json:"ram"`
	DiskGB   int64  `json:"disk"`
	CPUCores int    `json:"cpu"`
}

// Image represents an OS image from /cloud/images. Size and OS may be null.
type Image struct {
	ID      int     `json:"id"`
	OS      *string `json:"os"`
	Size    *string `json:"size"`
	Type    string  `json:"type,omitempty"`
	Subtype string  `json:"subtype,omitempty"`
}

// SOA holds the start-of-authority block of a DNS zone.
type SOA struct {
	Primary    string `json:"primary"`
	Hostmaster string `json:"hostmaster"`
	Serial     string `json:"serial"`
	Refresh    int    `json:"refresh"`
	Retry      int    `json:"retry"`
	Expire     int    `json:"expire"`
	TTL        int    `json:"ttl"`
}

// ZoneRecord represents a single record from /dns/records.
type ZoneRecord struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Prio    *int   `json:"prio,omitempty"`
}

// Zone represents a DNS zone from /dns/zones and /dns/zone. SOA and NS are
// only populated by the single-zone endpoint.
type Zone struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	ZoneType string   `json:"type"`
	SOA      *SOA     `json:"soa,omitempty"`
	NS       []string `json:"ns,omitempty"`
}

// SSHKey represents a stored key from /account/sshkeys.
type SSHKey struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"ssh_key"`
	Fingerprint string `json:"fingerprint"`
}

// AccountDetails represents the response from /account/details. Every field
// is optional on the provider side.
type AccountDetails struct {
	FullName *string `json:"fullname"`
	Email    *string `json:"email"`
	Company  *string `json:"company"`
	Address1 *string `json:"address1"`
	Address2 *string `json:"address2"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	Postcode *string `json:"postcode"`
	Country  *string `json:"country"`
}

// Invoice represents a billing record from /account/invoices.
type Invoice struct {
	ID      int     `json:"id"`
	Date    string  `json:"date"`
	DueDate string  `json:"duedate"`
	Status  string  `json:"status"`
	Total   float64 `json:"total"`
}
