package client

import (
	"context"
	"strconv"
)

const (
	endpointServer      = "/cloud/server/"
	endpointServers     = "/cloud/servers"
	endpointJobs        = "/cloud/serverjobs/"
	endpointIPv4        = "/cloud/ipv4/"
	endpointIPv6        = "/cloud/ipv6/"
	endpointStatus      = "/cloud/status/"
	endpointLocations   = "/cloud/locations"
	endpointPackages    = "/cloud/packages"
	endpointImages      = "/cloud/images"
	endpointZones       = "/dns/zones"
	endpointZone        = "/dns/zone/"
	endpointZoneRecords = "/dns/records/"
	endpointSSHKeys     = "/account/sshkeys"
	endpointDetails     = "/account/details"
	endpointInvoices    = "/account/invoices"
)

func scoped(prefix string, id int) string {
	return prefix + strconv.Itoa(id)
}

// GetServer fetches a single package from /cloud/server/{mbpkgid}.
func (c *DefaultClient) GetServer(ctx context.Context, mbpkgid int) (*Server, error) {
	return getObject[Server](ctx, c, "GetServer", scoped(endpointServer, mbpkgid))
}

// GetJobsPage fetches one page of jobs from /cloud/serverjobs/{mbpkgid}.
func (c *DefaultClient) GetJobsPage(ctx context.Context, mbpkgid int, cursor string) (Page[Job], error) {
	return getPage[Job](ctx, c, "GetJobs", scoped(endpointJobs, mbpkgid), cursor)
}

// GetIPv4 fetches the IPv4 addresses of a package.
func (c *DefaultClient) GetIPv4(ctx context.Context, mbpkgid int) ([]IPAddress, error) {
	return getJSON[[]IPAddress](ctx, c, "GetIPv4", scoped(endpointIPv4, mbpkgid))
}

// GetIPv6 fetches the IPv6 addresses of a package.
func (c *DefaultClient) GetIPv6(ctx context.Context, mbpkgid int) ([]IPAddress, error) {
	return getJSON[[]IPAddress](ctx, c, "GetIPv6", scoped(endpointIPv6, mbpkgid))
}

// GetStatus fetches the power/provisioning status of a package.
func (c *DefaultClient) GetStatus(ctx context.Context, mbpkgid int) (*ServerStatus, error) {
	return getObject[ServerStatus](ctx, c, "GetStatus", scoped(endpointStatus, mbpkgid))
}

// GetServersPage fetches one page of the account's packages.
func (c *DefaultClient) GetServersPage(ctx context.Context, cursor string) (Page[Server], error) {
	return getPage[Server](ctx, c, "GetServers", endpointServers, cursor)
}

// GetLocations fetches all datacenter locations.
func (c *DefaultClient) GetLocations(ctx context.Context) ([]Location, error) {
	return getJSON[[]Location](ctx, c, "GetLocations", endpointLocations)
}

// GetPackages fetches all orderable plans.
func (c *DefaultClient) GetPackages(ctx context.Context) ([]Package, error) {
	return getJSON[[]Package](ctx, c, "GetPackages", endpointPackages)
}

// GetImagesPage fetches one page of OS images.
func (c *DefaultClient) GetImagesPage(ctx context.Context, cursor string) (Page[Image], error) {
	return getPage[Image](ctx, c, "GetImages", endpointImages, cursor)
}

// GetZonesPage fetches one page of DNS zones.
func (c *DefaultClient) GetZonesPage(ctx context.Context, cursor string) (Page[Zone], error) {
	return getPage[Zone](ctx, c, "GetZones", endpointZones, cursor)
}

// GetZone fetches a single DNS zone with its SOA and NS set.
func (c *DefaultClient) GetZone(ctx context.Context, zoneID int) (*Zone, error) {
	return getObject[Zone](ctx, c, "GetZone", scoped(endpointZone, zoneID))
}

// GetZoneRecordsPage fetches one page of records for a DNS zone.
func (c *DefaultClient) GetZoneRecordsPage(ctx context.Context, zoneID int, cursor string) (Page[ZoneRecord], error) {
	return getPage[ZoneRecord](ctx, c, "GetZoneRecords", scoped(endpointZoneRecords, zoneID), cursor)
}

// GetSSHKeys fetches the SSH keys stored on the account.
func (c *DefaultClient) GetSSHKeys(ctx context.Context) ([]SSHKey, error) {
	return getJSON[[]SSHKey](ctx, c, "GetSSHKeys", endpointSSHKeys)
}

// GetAccountDetails fetches the account holder's contact details.
func (c *DefaultClient) GetAccountDetails(ctx context.Context) (*AccountDetails, error) {
	return getObject[AccountDetails](ctx, c, "GetAccountDetails", endpointDetails)
}

// GetInvoicesPage fetches one page of invoices.
func (c *DefaultClient) GetInvoicesPage(ctx context.Context, cursor string) (Page[Invoice], error) {
	return getPage[Invoice](ctx, c, "GetInvoices", endpointInvoices, cursor)
}
