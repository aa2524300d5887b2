package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dm/nactl/internal/client"
)

// MockAPI implements client.API for testing. Unset Fn fields return small
// fixed datasets. Every call is counted, and when Delay is set each call
// holds for Delay so concurrent entries can be observed.
type MockAPI struct {
	ServerFn      func(ctx context.Context, id int) (*client.Server, error)
	JobsFn        func(ctx context.Context, id int, cursor string) (client.Page[client.Job], error)
	IPv4Fn        func(ctx context.Context, id int) ([]client.IPAddress, error)
	IPv6Fn        func(ctx context.Context, id int) ([]client.IPAddress, error)
	StatusFn      func(ctx context.Context, id int) (*client.ServerStatus, error)
	ServersFn     func(ctx context.Context, cursor string) (client.Page[client.Server], error)
	LocationsFn   func(ctx context.Context) ([]client.Location, error)
	PackagesFn    func(ctx context.Context) ([]client.Package, error)
	ImagesFn      func(ctx context.Context, cursor string) (client.Page[client.Image], error)
	ZonesFn       func(ctx context.Context, cursor string) (client.Page[client.Zone], error)
	ZoneFn        func(ctx context.Context, id int) (*client.Zone, error)
	ZoneRecordsFn func(ctx context.Context, id int, cursor string) (client.Page[client.ZoneRecord], error)
	SSHKeysFn     func(ctx context.Context) ([]client.SSHKey, error)
	AccountFn     func(ctx context.Context) (*client.AccountDetails, error)
	InvoicesFn    func(ctx context.Context, cursor string) (client.Page[client.Invoice], error)

	Delay time.Duration

	mu       sync.Mutex
	calls    map[string]int
	inflight int
	peak     int
}

func (m *MockAPI) enter(ctx context.Context, op string) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[op]++
	m.inflight++
	if m.inflight > m.peak {
		m.peak = m.inflight
	}
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
		}
	}
}

func (m *MockAPI) exit() {
	m.mu.Lock()
	m.inflight--
	m.mu.Unlock()
}

// Calls returns how many times op was invoked.
func (m *MockAPI) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of invocations across all ops.
func (m *MockAPI) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// Peak returns the highest number of simultaneous calls observed.
func (m *MockAPI) Peak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

func strPtr(s string) *string { return &s }

func (m *MockAPI) GetServer(ctx context.Context, id int) (*client.Server, error) {
	m.enter(ctx, "GetServer")
	defer m.exit()
	if m.ServerFn != nil {
		return m.ServerFn(ctx, id)
	}
	return &client.Server{MBPkgID: id, FQDN: "web1.example.com", DomUPackage: "VR1x1x25", Installed: 1}, nil
}

func (m *MockAPI) GetJobsPage(ctx context.Context, id int, cursor string) (client.Page[client.Job], error) {
	m.enter(ctx, "GetJobs")
	defer m.exit()
	if m.JobsFn != nil {
		return m.JobsFn(ctx, id, cursor)
	}
	return client.Page[client.Job]{Items: []client.Job{
		{ID: 1, MBPkgID: id, TSInsert: "1700000000", Status: "5", Command: "build"},
		{ID: 2, MBPkgID: id, TSInsert: "1700000100", Status: "5", Command: "boot"},
	}}, nil
}

func (m *MockAPI) GetIPv4(ctx context.Context, id int) ([]client.IPAddress, error) {
	m.enter(ctx, "GetIPv4")
	defer m.exit()
	if m.IPv4Fn != nil {
		return m.IPv4Fn(ctx, id)
	}
	return []client.IPAddress{{ID: 1, IP: "192.0.2.10", Gateway: "192.0.2.1", Primary: 1}}, nil
}

func (m *MockAPI) GetIPv6(ctx context.Context, id int) ([]client.IPAddress, error) {
	m.enter(ctx, "GetIPv6")
	defer m.exit()
	if m.IPv6Fn != nil {
		return m.IPv6Fn(ctx, id)
	}
	return []client.IPAddress{{ID: 2, IP: "2001:db8::10", Gateway: "2001:db8::1"}}, nil
}

func (m *MockAPI) GetStatus(ctx context.Context, id int) (*client.ServerStatus, error) {
	m.enter(ctx, "GetStatus")
	defer m.exit()
	if m.StatusFn != nil {
		return m.StatusFn(ctx, id)
	}
	return &client.ServerStatus{MBPkgID: id, Status: "online"}, nil
}

func (m *MockAPI) GetServersPage(ctx context.Context, cursor string) (client.Page[client.Server], error) {
	m.enter(ctx, "GetServers")
	defer m.exit()
	if m.ServersFn != nil {
		return m.ServersFn(ctx, cursor)
	}
	return client.Page[client.Server]{Items: []client.Server{
		{MBPkgID: 100, FQDN: "a.example.com"},
		{MBPkgID: 101, FQDN: "b.example.com"},
	}}, nil
}

func (m *MockAPI) GetLocations(ctx context.Context) ([]client.Location, error) {
	m.enter(ctx, "GetLocations")
	defer m.exit()
	if m.LocationsFn != nil {
		return m.LocationsFn(ctx)
	}
	return []client.Location{{ID: 3, Name: "Dallas", Continent: "North America"}}, nil
}

func (m *MockAPI) GetPackages(ctx context.Context) ([]client.Package, error) {
	m.enter(ctx, "GetPackages")
	defer m.exit()
	if m.PackagesFn != nil {
		return m.PackagesFn(ctx)
	}
	return []client.Package{{ID: 1, Name: "VR1x1x25", City: "Dallas", RAMMB: 1024}}, nil
}

func (m *MockAPI) GetImagesPage(ctx context.Context, cursor string) (client.Page[client.Image], error) {
	m.enter(ctx, "GetImages")
	defer m.exit()
	if m.ImagesFn != nil {
		return m.ImagesFn(ctx, cursor)
	}
	return client.Page[client.Image]{Items: []client.Image{
		{ID: 1, OS: strPtr("Debian 12"), Size: strPtr("10GB")},
		{ID: 2},
	}}, nil
}

func (m *MockAPI) GetZonesPage(ctx context.Context, cursor string) (client.Page[client.Zone], error) {
	m.enter(ctx, "GetZones")
	defer m.exit()
	if m.ZonesFn != nil {
		return m.ZonesFn(ctx, cursor)
	}
	return client.Page[client.Zone]{Items: []client.Zone{{ID: 42, Name: "example.com", ZoneType: "NATIVE"}}}, nil
}

func (m *MockAPI) GetZone(ctx context.Context, id int) (*client.Zone, error) {
	m.enter(ctx, "GetZone")
	defer m.exit()
	if m.ZoneFn != nil {
		return m.ZoneFn(ctx, id)
	}
	return &client.Zone{
		ID: id, Name: "example.com", ZoneType: "NATIVE",
		SOA: &client.SOA{Primary: "ns1.example.net", Hostmaster: "hostmaster.example.com", Serial: "2024010101"},
		NS:  []string{"ns1.example.net", "ns2.example.net"},
	}, nil
}

func (m *MockAPI) GetZoneRecordsPage(ctx context.Context, id int, cursor string) (client.Page[client.ZoneRecord], error) {
	m.enter(ctx, "GetZoneRecords")
	defer m.exit()
	if m.ZoneRecordsFn != nil {
		return m.ZoneRecordsFn(ctx, id, cursor)
	}
	return client.Page[client.ZoneRecord]{Items: []client.ZoneRecord{
		{ID: 1, Name: "www.example.com", Type: "A", Content: "192.0.2.10", TTL: 3600},
	}}, nil
}

func (m *MockAPI) GetSSHKeys(ctx context.Context) ([]client.SSHKey, error) {
	m.enter(ctx, "GetSSHKeys")
	defer m.exit()
	if m.SSHKeysFn != nil {
		return m.SSHKeysFn(ctx)
	}
	return []client.SSHKey{{ID: 1, Name: "laptop", Fingerprint: "SHA256:abc"}}, nil
}

func (m *MockAPI) GetAccountDetails(ctx context.Context) (*client.AccountDetails, error) {
	m.enter(ctx, "GetAccountDetails")
	defer m.exit()
	if m.AccountFn != nil {
		return m.AccountFn(ctx)
	}
	return &client.AccountDetails{FullName: strPtr("Jane Doe"), City: strPtr("Austin")}, nil
}

func (m *MockAPI) GetInvoicesPage(ctx context.Context, cursor string) (client.Page[client.Invoice], error) {
	m.enter(ctx, "GetInvoices")
	defer m.exit()
	if m.InvoicesFn != nil {
		return m.InvoicesFn(ctx, cursor)
	}
	return client.Page[client.Invoice]{Items: []client.Invoice{
		{ID: 3, Status: "Unpaid", Total: 5},
		{ID: 2, Status: "Paid", Total: 5},
		{ID: 1, Status: "Paid", Total: 5},
	}}, nil
}

func apiErr(kind client.ErrorKind) *client.APIError {
	return &client.APIError{Kind: kind, Op: "mock", Err: errMockFailure}
}

var errMockFailure = errors.New("mock failure")

// recordingSleep returns a SleepFunc that records delays without waiting.
func recordingSleep() (SleepFunc, func() []time.Duration) {
	var (
		mu     sync.Mutex
		delays []time.Duration
	)
	fn := func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return ctx.Err()
	}
	get := func() []time.Duration {
		mu.Lock()
		defer mu.Unlock()
		return append([]time.Duration(nil), delays...)
	}
	return fn, get
}

// testGovernor returns a governor with fast, recorded backoff.
func testGovernor(cfg GovernorConfig) (*Governor, func() []time.Duration) {
	sleep, delays := recordingSleep()
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = 10 * time.Millisecond
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = time.Second
	}
	if cfg.TransientDelay == 0 {
		cfg.TransientDelay = 5 * time.Millisecond
	}
	return NewGovernor(cfg, WithSleep(sleep)), delays
}
