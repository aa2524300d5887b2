package engine

import (
	"github.com/dm/nactl/internal/client"
	"github.com/dm/nactl/internal/model"
)

// AssembleOptions tunes the inventory view.
type AssembleOptions struct {
	// InvoiceLimit caps the invoice rows kept (provider order). 0 keeps all.
	InvoiceLimit int
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sectionError(f *client.APIError) *model.SectionError {
	return &model.SectionError{
		Kind:      f.Kind.String(),
		Retryable: f.Retryable(),
		Message:   f.Error(),
	}
}

// section maps a Result into a Section using row. Rows keep provider order;
// a failed section has no rows.
func section[T, R any](res model.Result[[]T], row func(T) R) model.Section[R] {
	s := model.Section[R]{Kind: res.Kind, Rows: []R{}}
	if !res.OK() {
		s.Error = sectionError(res.Failure())
		return s
	}
	s.Rows = make([]R, 0, len(res.Value))
	for _, v := range res.Value {
		s.Rows = append(s.Rows, row(v))
	}
	s.Total = len(s.Rows)
	return s
}

func serverRow(s client.Server) model.ServerRow {
	return model.ServerRow{
		MBPkgID:   s.MBPkgID,
		FQDN:      s.FQDN,
		Package:   s.DomUPackage,
		Location:  s.LocationID,
		Installed: s.Installed != 0,
	}
}

func jobRow(j client.Job) model.JobRow {
	return model.JobRow{ID: j.ID, Inserted: j.TSInsert, Status: j.Status, Command: j.Command}
}

func addressRow(a model.Address) model.AddressRow {
	return model.AddressRow{
		Family:  a.Family,
		IP:      a.IP,
		Gateway: a.Gateway,
		Netmask: a.Netmask,
		Reverse: a.Reverse,
		Primary: a.Primary != 0,
	}
}

func locationRow(l client.Location) model.LocationRow {
	return model.LocationRow{ID: l.ID, Name: l.Name, IATACode: l.IATACode, Continent: l.Continent, Disabled: l.Disabled != 0}
}

func packageRow(p client.Package) model.PackageRow {
	return model.PackageRow{
		ID:       p.ID,
		Name:     p.Name,
		City:     p.City,
		RAMBytes: p.RAMMB * 1024 * 1024,
		DiskGB:   p.DiskGB,
		CPUCores: p.CPUCores,
	}
}

func imageRow(i client.Image) model.ImageRow {
	return model.ImageRow{ID: i.ID, OS: deref(i.OS), Size: deref(i.Size), Type: i.Type}
}

func zoneRow(z client.Zone) model.ZoneRow {
	return model.ZoneRow{ID: z.ID, Name: z.Name, Type: z.ZoneType}
}

func sshKeyRow(k client.SSHKey) model.SSHKeyRow {
	return model.SSHKeyRow{ID: k.ID, Name: k.Name, Fingerprint: k.Fingerprint}
}

func invoiceRow(i client.Invoice) model.InvoiceRow {
	return model.InvoiceRow{ID: i.ID, Date: i.Date, DueDate: i.DueDate, Status: i.Status, Total: i.Total}
}

func accountView(d *client.AccountDetails) model.AccountView {
	if d == nil {
		return model.AccountView{}
	}
	return model.AccountView{
		FullName: deref(d.FullName),
		Email:    deref(d.Email),
		Company:  deref(d.Company),
		Address1: deref(d.Address1),
		Address2: deref(d.Address2),
		City:     deref(d.City),
		State:    deref(d.State),
		Postcode: deref(d.Postcode),
		Country:  deref(d.Country),
	}
}

func recordRow(r client.ZoneRecord) model.RecordRow {
	return model.RecordRow{ID: r.ID, Name: r.Name, Type: r.Type, Content: r.Content, TTL: r.TTL, Prio: r.Prio}
}

func mapRows[T, R any](in []T, row func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, row(v))
	}
	return out
}

// AssembleDetail shapes a PackageDetail for rendering.
func AssembleDetail(d *model.PackageDetail) model.DetailView {
	return model.DetailView{
		Server:    serverRow(d.Server),
		Jobs:      mapRows(d.Jobs, jobRow),
		Addresses: mapRows(d.Addresses, addressRow),
		Status:    d.Status.Status,
	}
}

// AssembleInventory shapes an InventorySnapshot for rendering. Failed
// collections become sections carrying only an error.
func AssembleInventory(s *model.InventorySnapshot, opts AssembleOptions) model.InventoryView {
	v := model.InventoryView{
		Servers:   section(s.Servers, serverRow),
		Locations: section(s.Locations, locationRow),
		Packages:  section(s.Packages, packageRow),
		Images:    section(s.Images, imageRow),
		Zones:     section(s.Zones, zoneRow),
		SSHKeys:   section(s.SSHKeys, sshKeyRow),
		Invoices:  section(s.Invoices, invoiceRow),
	}

	v.Account = model.Section[model.AccountView]{Kind: model.KindAccount, Rows: []model.AccountView{}}
	if s.Account.OK() {
		v.Account.Rows = append(v.Account.Rows, accountView(s.Account.Value))
		v.Account.Total = 1
	} else {
		v.Account.Error = sectionError(s.Account.Failure())
	}

	if opts.InvoiceLimit > 0 && len(v.Invoices.Rows) > opts.InvoiceLimit {
		v.Invoices.Rows = v.Invoices.Rows[:opts.InvoiceLimit]
	}
	return v
}

// AssembleZone shapes a ZoneDetail for rendering.
func AssembleZone(z *model.ZoneDetail) model.ZoneView {
	v := model.ZoneView{
		ID:      z.Zone.ID,
		Name:    z.Zone.Name,
		Type:    z.Zone.ZoneType,
		NS:      append([]string{}, z.Zone.NS...),
		Records: mapRows(z.Records, recordRow),
	}
	if soa := z.Zone.SOA; soa != nil {
		v.SOA = &model.SOAView{Primary: soa.Primary, Hostmaster: soa.Hostmaster, Serial: soa.Serial, TTL: soa.TTL}
	}
	return v
}
