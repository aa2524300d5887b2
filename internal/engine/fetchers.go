package engine

import (
	"context"
	"fmt"

	"github.com/dm/nactl/internal/client"
	"github.com/dm/nactl/internal/model"
)

// Fetchers issue the Transport calls for each resource kind through a
// Governor. Paginated kinds are collected into one ordered slice.
type Fetchers struct {
	api client.API
	gov *Governor
}

// NewFetchers binds the resource fetchers to api and gov.
func NewFetchers(api client.API, gov *Governor) *Fetchers {
	return &Fetchers{api: api, gov: gov}
}

// PageFunc fetches the page that starts at cursor ("" for the first page).
type PageFunc[T any] func(ctx context.Context, cursor string) (client.Page[T], error)

// CollectPages follows continuation cursors until the provider returns an
// empty one, submitting each page through gov. Items keep page order. A
// failure on any page discards everything collected so far.
func CollectPages[T any](ctx context.Context, gov *Governor, req model.Request, page PageFunc[T]) ([]T, error) {
	var (
		items  []T
		cursor string
		seen   = map[string]bool{}
	)
	for {
		p, err := Submit(ctx, gov, req, func(ctx context.Context) (client.Page[T], error) {
			return page(ctx, cursor)
		})
		if err != nil {
			return nil, err
		}
		items = append(items, p.Items...)
		if p.Next == "" {
			if items == nil {
				items = []T{}
			}
			return items, nil
		}
		if seen[p.Next] {
			return nil, &client.APIError{
				Kind: client.KindDecode,
				Op:   req.String(),
				Err:  fmt.Errorf("pagination cursor %q repeated", p.Next),
			}
		}
		seen[p.Next] = true
		cursor = p.Next
	}
}

// Server fetches one package record.
func (f *Fetchers) Server(ctx context.Context, mbpkgid int) (*client.Server, error) {
	req := model.Request{Kind: model.KindServer, Key: mbpkgid}
	return Submit(ctx, f.gov, req, func(ctx context.Context) (*client.Server, error) {
		return f.api.GetServer(ctx, mbpkgid)
	})
}

// Jobs fetches every job page of a package in provider order.
func (f *Fetchers) Jobs(ctx context.Context, mbpkgid int) ([]client.Job, error) {
	req := model.Request{Kind: model.KindJobs, Key: mbpkgid}
	return CollectPages(ctx, f.gov, req, func(ctx context.Context, cursor string) (client.Page[client.Job], error) {
		return f.api.GetJobsPage(ctx, mbpkgid, cursor)
	})
}

// Addresses fetches IPv4 then IPv6 addresses; IPv4 entries come first.
func (f *Fetchers) Addresses(ctx context.Context, mbpkgid int) ([]model.Address, error) {
	req := model.Request{Kind: model.KindAddresses, Key: mbpkgid}
	v4, err := Submit(ctx, f.gov, req, func(ctx context.Context) ([]client.IPAddress, error) {
		return f.api.GetIPv4(ctx, mbpkgid)
	})
	if err != nil {
		return nil, err
	}
	v6, err := Submit(ctx, f.gov, req, func(ctx context.Context) ([]client.IPAddress, error) {
		return f.api.GetIPv6(ctx, mbpkgid)
	})
	if err != nil {
		return nil, err
	}

	addrs := make([]model.Address, 0, len(v4)+len(v6))
	for _, a := range v4 {
		addrs = append(addrs, model.Address{Family: "ipv4", IPAddress: a})
	}
	for _, a := range v6 {
		addrs = append(addrs, model.Address{Family: "ipv6", IPAddress: a})
	}
	return addrs, nil
}

// Status fetches the current status of a package.
func (f *Fetchers) Status(ctx context.Context, mbpkgid int) (*client.ServerStatus, error) {
	req := model.Request{Kind: model.KindStatus, Key: mbpkgid}
	return Submit(ctx, f.gov, req, func(ctx context.Context) (*client.ServerStatus, error) {
		return f.api.GetStatus(ctx, mbpkgid)
	})
}

// Servers fetches every package on the account.
func (f *Fetchers) Servers(ctx context.Context) ([]client.Server, error) {
	return CollectPages(ctx, f.gov, model.Request{Kind: model.KindServers}, f.api.GetServersPage)
}

// Locations fetches the datacenter locations.
func (f *Fetchers) Locations(ctx context.Context) ([]client.Location, error) {
	return Submit(ctx, f.gov, model.Request{Kind: model.KindLocations}, f.api.GetLocations)
}

// Packages fetches the orderable plans.
func (f *Fetchers) Packages(ctx context.Context) ([]client.Package, error) {
	return Submit(ctx, f.gov, model.Request{Kind: model.KindPackages}, f.api.GetPackages)
}

// Images fetches every OS image page.
func (f *Fetchers) Images(ctx context.Context) ([]client.Image, error) {
	return CollectPages(ctx, f.gov, model.Request{Kind: model.KindImages}, f.api.GetImagesPage)
}

// Zones fetches every DNS zone page.
func (f *Fetchers) Zones(ctx context.Context) ([]client.Zone, error) {
	return CollectPages(ctx, f.gov, model.Request{Kind: model.KindZones}, f.api.GetZonesPage)
}

// SSHKeys fetches the account's SSH keys.
func (f *Fetchers) SSHKeys(ctx context.Context) ([]client.SSHKey, error) {
	return Submit(ctx, f.gov, model.Request{Kind: model.KindSSHKeys}, f.api.GetSSHKeys)
}

// Account fetches the account holder's details.
func (f *Fetchers) Account(ctx context.Context) (*client.AccountDetails, error) {
	return Submit(ctx, f.gov, model.Request{Kind: model.KindAccount}, f.api.GetAccountDetails)
}

// Invoices fetches every invoice page.
func (f *Fetchers) Invoices(ctx context.Context) ([]client.Invoice, error) {
	return CollectPages(ctx, f.gov, model.Request{Kind: model.KindInvoices}, f.api.GetInvoicesPage)
}

// Zone fetches one DNS zone.
func (f *Fetchers) Zone(ctx context.Context, zoneID int) (*client.Zone, error) {
	req := model.Request{Kind: model.KindZone, Key: zoneID}
	return Submit(ctx, f.gov, req, func(ctx context.Context) (*client.Zone, error) {
		return f.api.GetZone(ctx, zoneID)
	})
}

// ZoneRecords fetches every record page of a DNS zone.
func (f *Fetchers) ZoneRecords(ctx context.Context, zoneID int) ([]client.ZoneRecord, error) {
	req := model.Request{Kind: model.KindZoneRecords, Key: zoneID}
	return CollectPages(ctx, f.gov, req, func(ctx context.Context, cursor string) (client.Page[client.ZoneRecord], error) {
		return f.api.GetZoneRecordsPage(ctx, zoneID, cursor)
	})
}
