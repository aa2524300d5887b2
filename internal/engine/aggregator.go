package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dm/nactl/internal/client"
	"github.com/dm/nactl/internal/model"
)

// ViewError reports that a scoped view could not be assembled. Kind names
// the sub-resource whose fetch failed first.
type ViewError struct {
	View string // "package" or "zone"
	Key  int
	Kind model.Kind
	Err  error
}

func (e *ViewError) Error() string {
	return fmt.Sprintf("%s %d: %s: %v", e.View, e.Key, e.Kind, e.Err)
}

func (e *ViewError) Unwrap() error { return e.Err }

// Aggregator fans fetches out through the Governor and joins them into
// snapshots.
type Aggregator struct {
	fetch *Fetchers
	gov   *Governor
	now   func() time.Time
}

// NewAggregator creates an Aggregator over api whose calls are admitted by gov.
func NewAggregator(api client.API, gov *Governor) *Aggregator {
	return &Aggregator{
		fetch: NewFetchers(api, gov),
		gov:   gov,
		now:   time.Now,
	}
}

// newGroup returns an errgroup whose task count matches the governor bound.
// The group has no shared context, so a failed fetch never cancels its
// siblings.
func (a *Aggregator) newGroup() *errgroup.Group {
	g := new(errgroup.Group)
	g.SetLimit(a.gov.MaxConcurrency())
	return g
}

func invalidKey(view string, key int, kind model.Kind) *ViewError {
	return &ViewError{View: view, Key: key, Kind: kind, Err: &client.APIError{
		Kind: client.KindBadRequest,
		Op:   "validate",
		Err:  fmt.Errorf("invalid %s id %d", view, key),
	}}
}

// FetchPackageDetail fetches the server, jobs, addresses and status of one
// package concurrently. All four fetches run to completion; if any failed
// the first failure is returned as a *ViewError and no detail is built.
func (a *Aggregator) FetchPackageDetail(ctx context.Context, key int) (*model.PackageDetail, error) {
	if key <= 0 {
		return nil, invalidKey("package", key, model.KindServer)
	}

	var (
		server *client.Server
		jobs   []client.Job
		addrs  []model.Address
		status *client.ServerStatus
	)
	fail := func(kind model.Kind, err error) error {
		if err == nil {
			return nil
		}
		return &ViewError{View: "package", Key: key, Kind: kind, Err: err}
	}

	g := a.newGroup()
	g.Go(func() error {
		var err error
		server, err = a.fetch.Server(ctx, key)
		return fail(model.KindServer, err)
	})
	g.Go(func() error {
		var err error
		jobs, err = a.fetch.Jobs(ctx, key)
		return fail(model.KindJobs, err)
	})
	g.Go(func() error {
		var err error
		addrs, err = a.fetch.Addresses(ctx, key)
		return fail(model.KindAddresses, err)
	})
	g.Go(func() error {
		var err error
		status, err = a.fetch.Status(ctx, key)
		return fail(model.KindStatus, err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if server == nil || status == nil {
		return nil, fail(model.KindServer, &client.APIError{Kind: client.KindDecode, Op: "FetchPackageDetail",
			Err: fmt.Errorf("incomplete response (unexpected nil)")})
	}
	if server.MBPkgID != key {
		return nil, fail(model.KindServer, &client.APIError{Kind: client.KindDecode, Op: "FetchPackageDetail",
			Err: fmt.Errorf("provider returned package %d", server.MBPkgID)})
	}

	return &model.PackageDetail{
		Key:       key,
		Server:    *server,
		Jobs:      jobs,
		Addresses: addrs,
		Status:    *status,
		FetchedAt: a.now(),
	}, nil
}

// FetchInventory fetches the eight account-wide collections concurrently.
// Each failure is recorded in its own Result; the call itself never fails.
func (a *Aggregator) FetchInventory(ctx context.Context) *model.InventorySnapshot {
	snap := &model.InventorySnapshot{}

	g := a.newGroup()
	g.Go(func() error {
		v, err := a.fetch.Servers(ctx)
		snap.Servers = model.NewResult(model.KindServers, v, err)
		return nil
	})
	g.Go(func() error {
		v, err := a.fetch.Locations(ctx)
		snap.Locations = model.NewResult(model.KindLocations, v, err)
		return nil
	})
	g.Go(func() error {
		v, err := a.fetch.Packages(ctx)
		snap.Packages = model.NewResult(model.KindPackages, v, err)
		return nil
	})
	g.Go(func() error {
		v, err := a.fetch.Images(ctx)
		snap.Images = model.NewResult(model.KindImages, v, err)
		return nil
	})
	g.Go(func() error {
		v, err := a.fetch.Zones(ctx)
		snap.Zones = model.NewResult(model.KindZones, v, err)
		return nil
	})
	g.Go(func() error {
		v, err := a.fetch.SSHKeys(ctx)
		snap.SSHKeys = model.NewResult(model.KindSSHKeys, v, err)
		return nil
	})
	g.Go(func() error {
		v, err := a.fetch.Account(ctx)
		snap.Account = model.NewResult(model.KindAccount, v, err)
		return nil
	})
	g.Go(func() error {
		v, err := a.fetch.Invoices(ctx)
		snap.Invoices = model.NewResult(model.KindInvoices, v, err)
		return nil
	})
	_ = g.Wait()

	snap.FetchedAt = a.now()
	return snap
}

// FetchZone fetches a DNS zone and then its records. Either failure voids
// the view.
func (a *Aggregator) FetchZone(ctx context.Context, zoneID int) (*model.ZoneDetail, error) {
	if zoneID <= 0 {
		return nil, invalidKey("zone", zoneID, model.KindZone)
	}

	zone, err := a.fetch.Zone(ctx, zoneID)
	if err != nil {
		return nil, &ViewError{View: "zone", Key: zoneID, Kind: model.KindZone, Err: err}
	}
	if zone == nil {
		return nil, &ViewError{View: "zone", Key: zoneID, Kind: model.KindZone, Err: &client.APIError{
			Kind: client.KindDecode, Op: "FetchZone", Err: fmt.Errorf("incomplete response (unexpected nil)")}}
	}
	records, err := a.fetch.ZoneRecords(ctx, zoneID)
	if err != nil {
		return nil, &ViewError{View: "zone", Key: zoneID, Kind: model.KindZoneRecords, Err: err}
	}

	return &model.ZoneDetail{
		Zone:      *zone,
		Records:   records,
		FetchedAt: a.now(),
	}, nil
}
