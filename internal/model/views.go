package model

// View types are the caller-facing shapes produced by the assembler. They
// carry display-ready values but no presentation formatting.

// ServerRow holds one package for the servers section and the detail header.
type ServerRow struct {
	MBPkgID   int    `json:"mbpkgid"`
	FQDN      string `json:"fqdn"`
	Package   string `json:"package"`
	Location  int    `json:"location_id"`
	Installed bool   `json:"installed"`
}

// JobRow holds one job of a package.
type JobRow struct {
	ID       int    `json:"id"`
	Inserted string `json:"inserted"`
	Status   string `json:"status"`
	Command  string `json:"command"`
}

// AddressRow holds one IPv4 or IPv6 address of a package.
type AddressRow struct {
	Family  string `json:"family"`
	IP      string `json:"ip"`
	Gateway string `json:"gateway"`
	Netmask string `json:"netmask"`
	Reverse string `json:"reverse"`
	Primary bool   `json:"primary"`
}

// LocationRow holds one datacenter location.
type LocationRow struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IATACode  string `json:"iata_code"`
	Continent string `json:"continent"`
	Disabled  bool   `json:"disabled"`
}

// PackageRow holds one orderable plan. RAM is in bytes, disk in gigabytes.
type PackageRow struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	RAMBytes int64  `json:"ram_bytes"`
	DiskGB   int64  `json:"disk_gb"`
	CPUCores int    `json:"cpu"`
}

// ImageRow holds one OS image. Missing provider values are left empty.
type ImageRow struct {
	ID   int    `json:"id"`
	OS   string `json:"os"`
	Size string `json:"size"`
	Type string `json:"type"`
}

// ZoneRow holds one DNS zone of the zones section.
type ZoneRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SSHKeyRow holds one SSH key stored on the account.
type SSHKeyRow struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
}

// InvoiceRow holds one invoice. Total is in account currency.
type InvoiceRow struct {
	ID      int     `json:"id"`
	Date    string  `json:"date"`
	DueDate string  `json:"due_date"`
	Status  string  `json:"status"`
	Total   float64 `json:"total"`
}

// AccountView holds the account holder's details. Missing values are empty.
type AccountView struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// RecordRow holds one DNS record.
type RecordRow struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Prio    *int   `json:"prio,omitempty"`
}

// SectionError describes why an inventory section has no rows.
type SectionError struct {
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
	Message   string `json:"message"`
}

// Section is one inventory collection. A section with Error set has no rows.
type Section[T any] struct {
	Kind  Kind          `json:"kind"`
	Rows  []T           `json:"rows"`
	Total int           `json:"total"`
	Error *SectionError `json:"error,omitempty"`
}

// OK reports whether the section was fetched successfully.
func (s Section[T]) OK() bool { return s.Error == nil }

// DetailView is the assembled single-package detail.
type DetailView struct {
	Server    ServerRow    `json:"server"`
	Jobs      []JobRow     `json:"jobs"`
	Addresses []AddressRow `json:"addresses"`
	Status    string       `json:"status"`
}

// InventoryView is the assembled account-wide inventory.
type InventoryView struct {
	Servers   Section[ServerRow]   `json:"servers"`
	Locations Section[LocationRow] `json:"locations"`
	Packages  Section[PackageRow]  `json:"packages"`
	Images    Section[ImageRow]    `json:"images"`
	Zones     Section[ZoneRow]     `json:"zones"`
	SSHKeys   Section[SSHKeyRow]   `json:"ssh_keys"`
	Account   Section[AccountView] `json:"account"`
	Invoices  Section[InvoiceRow]  `json:"invoices"`
}

// Degraded reports whether any section failed.
func (v *InventoryView) Degraded() bool {
	return !v.Servers.OK() || !v.Locations.OK() || !v.Packages.OK() || !v.Images.OK() ||
		!v.Zones.OK() || !v.SSHKeys.OK() || !v.Account.OK() || !v.Invoices.OK()
}

// SOAView holds the start-of-authority block of a zone.
type SOAView struct {
	Primary    string `json:"primary"`
	Hostmaster string `json:"hostmaster"`
	Serial     string `json:"serial"`
	TTL        int    `json:"ttl"`
}

// ZoneView is the assembled DNS zone.
type ZoneView struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	SOA     *SOAView    `json:"soa,omitempty"`
	NS      []string    `json:"ns"`
	Records []RecordRow `json:"records"`
}
