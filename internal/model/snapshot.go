package model

import (
	"errors"
	"strconv"
	"time"

	"github.com/dm/nactl/internal/client"
)

// Kind names a resource kind the aggregator can fetch.
type Kind string

const (
	KindServer      Kind = "server"
	KindJobs        Kind = "jobs"
	KindAddresses   Kind = "addresses"
	KindStatus      Kind = "status"
	KindServers     Kind = "servers"
	KindLocations   Kind = "locations"
	KindPackages    Kind = "packages"
	KindImages      Kind = "images"
	KindZones       Kind = "zones"
	KindSSHKeys     Kind = "ssh_keys"
	KindAccount     Kind = "account"
	KindInvoices    Kind = "invoices"
	KindZone        Kind = "zone"
	KindZoneRecords Kind = "zone_records"
)

// DetailKinds are the four scoped kinds that make up a PackageDetail.
var DetailKinds = []Kind{KindServer, KindJobs, KindAddresses, KindStatus}

// InventoryKinds are the eight unscoped kinds of an InventorySnapshot, in
// rendering order.
var InventoryKinds = []Kind{
	KindServers, KindLocations, KindPackages, KindImages,
	KindZones, KindSSHKeys, KindAccount, KindInvoices,
}

// Request identifies one resource fetch. Key is the scoping id (package or
// zone id) and is zero for unscoped kinds.
type Request struct {
	Kind Kind
	Key  int
}

func (r Request) String() string {
	if r.Key == 0 {
		return string(r.Kind)
	}
	return string(r.Kind) + "/" + strconv.Itoa(r.Key)
}

// Result is the terminal outcome of one fetch: either a Value or an Err.
// A failed Result never carries partial data.
type Result[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// NewResult builds a Result, dropping v when err is set.
func NewResult[T any](kind Kind, v T, err error) Result[T] {
	if err != nil {
		var zero T
		return Result[T]{Kind: kind, Value: zero, Err: err}
	}
	return Result[T]{Kind: kind, Value: v}
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Failure returns the classified failure, or nil on success. Unclassified
// errors are reported as network failures.
func (r Result[T]) Failure() *client.APIError {
	if r.Err == nil {
		return nil
	}
	var apiErr *client.APIError
	if errors.As(r.Err, &apiErr) {
		return apiErr
	}
	return &client.APIError{Kind: client.KindOf(r.Err), Err: r.Err}
}

// Outcome returns the type-erased view of r.
func (r Result[T]) Outcome() Outcome {
	return Outcome{Kind: r.Kind, Err: r.Err}
}

// Outcome is a Result without its value.
type Outcome struct {
	Kind Kind
	Err  error
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Snapshot maps each requested kind to its terminal outcome.
type Snapshot map[Kind]Outcome

// Complete reports whether every kind in kinds has an entry.
func (s Snapshot) Complete(kinds ...Kind) bool {
	for _, k := range kinds {
		if _, ok := s[k]; !ok {
			return false
		}
	}
	return true
}

// Address is an IP record tagged with its family.
type Address struct {
	Family string // "ipv4" or "ipv6"
	client.IPAddress
}

// PackageDetail is the single-package detail view. All parts belong to Key
// and are only assembled once every fetch succeeded.
type PackageDetail struct {
	Key       int
	Server    client.Server
	Jobs      []client.Job
	Addresses []Address
	Status    client.ServerStatus
	FetchedAt time.Time
}

// InventorySnapshot holds the eight independently fetched account-wide
// collections. A failure in one does not affect the others.
type InventorySnapshot struct {
	Servers   Result[[]client.Server]
	Locations Result[[]client.Location]
	Packages  Result[[]client.Package]
	Images    Result[[]client.Image]
	Zones     Result[[]client.Zone]
	SSHKeys   Result[[]client.SSHKey]
	Account   Result[*client.AccountDetails]
	Invoices  Result[[]client.Invoice]
	FetchedAt time.Time
}

// Outcomes returns the eight outcomes in InventoryKinds order.
func (s *InventorySnapshot) Outcomes() []Outcome {
	return []Outcome{
		s.Servers.Outcome(),
		s.Locations.Outcome(),
		s.Packages.Outcome(),
		s.Images.Outcome(),
		s.Zones.Outcome(),
		s.SSHKeys.Outcome(),
		s.Account.Outcome(),
		s.Invoices.Outcome(),
	}
}

// Snapshot returns the outcomes keyed by kind.
func (s *InventorySnapshot) Snapshot() Snapshot {
	snap := make(Snapshot, len(InventoryKinds))
	for _, o := range s.Outcomes() {
		snap[o.Kind] = o
	}
	return snap
}

// Failures returns the failed outcomes in InventoryKinds order.
func (s *InventorySnapshot) Failures() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes() {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// ZoneDetail is the DNS zone view: the zone header plus its records.
type ZoneDetail struct {
	Zone      client.Zone
	Records   []client.ZoneRecord
	FetchedAt time.Time
}
