// Package render writes assembled views as styled text tables or JSON.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/dm/nactl/internal/format"
	"github.com/dm/nactl/internal/model"
)

// Text writes view as human-readable tables. view must be a DetailView,
// InventoryView or ZoneView (value or pointer).
func Text(w io.Writer, view any) error {
	p := &printer{st: newStyles(lipgloss.NewRenderer(w))}
	switch v := view.(type) {
	case model.DetailView:
		p.detail(v)
	case *model.DetailView:
		p.detail(*v)
	case model.InventoryView:
		p.inventory(v)
	case *model.InventoryView:
		p.inventory(*v)
	case model.ZoneView:
		p.zone(v)
	case *model.ZoneView:
		p.zone(*v)
	default:
		return fmt.Errorf("render: unsupported view %T", view)
	}
	_, err := io.WriteString(w, p.b.String())
	return err
}

type printer struct {
	st styles
	b  strings.Builder
}

func (p *printer) line(parts ...string) {
	p.b.WriteString(strings.Join(parts, " "))
	p.b.WriteByte('\n')
}

func (p *printer) heading(title string, count string) {
	if p.b.Len() > 0 {
		p.b.WriteByte('\n')
	}
	if count == "" {
		p.line(p.st.title.Render(title))
		return
	}
	p.line(p.st.title.Render(title), p.st.dim.Render("("+count+")"))
}

func (p *printer) field(label, value string) {
	p.line(p.st.label.Render(label), p.st.value.Render(format.FormatOptional(value)))
}

// table renders rows under headers. Column 0 is the id column; statusCol,
// when >= 0, is colored by status value.
func (p *printer) table(headers []string, rows [][]string, statusCol int) {
	if len(rows) == 0 {
		p.line(p.st.dim.Render("  (none)"))
		return
	}
	st := p.st
	t := ltable.New().
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return st.tableHeader
			}
			switch {
			case col == 0:
				return st.id
			case col == statusCol && row >= 0 && row < len(rows):
				return st.status(rows[row][col]).PaddingRight(2)
			default:
				return st.cell
			}
		}).
		BorderStyle(st.tableBorder).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)
	p.line(t.String())
}

func (p *printer) sectionFailed(e *model.SectionError) {
	msg := "unavailable: " + e.Kind
	if e.Retryable {
		msg += " (retryable)"
	}
	p.line(" ", p.st.err.Render(msg))
}

func itoa(n int) string { return strconv.Itoa(n) }

func (p *printer) detail(v model.DetailView) {
	s := v.Server
	p.heading("Server "+itoa(s.MBPkgID), "")
	p.field("fqdn", s.FQDN)
	p.field("package", s.Package)
	p.field("location", itoa(s.Location))
	p.field("installed", format.FormatBool(s.Installed))
	p.line(p.st.label.Render("status"), p.st.status(v.Status).Render(format.FormatOptional(v.Status)))

	p.heading("Jobs", itoa(len(v.Jobs)))
	rows := make([][]string, 0, len(v.Jobs))
	for _, j := range v.Jobs {
		rows = append(rows, []string{itoa(j.ID), format.FormatOptional(j.Inserted), format.FormatOptional(j.Status), j.Command})
	}
	p.table([]string{"ID", "INSERTED", "STATUS", "COMMAND"}, rows, 2)

	p.heading("Addresses", itoa(len(v.Addresses)))
	rows = make([][]string, 0, len(v.Addresses))
	for _, a := range v.Addresses {
		primary := ""
		if a.Primary {
			primary = "*"
		}
		rows = append(rows, []string{a.Family, a.IP, format.FormatOptional(a.Gateway),
			format.FormatOptional(a.Netmask), format.FormatOptional(a.Reverse), primary})
	}
	p.table([]string{"FAMILY", "IP", "GATEWAY", "NETMASK", "REVERSE", "PRIMARY"}, rows, -1)
}

// sectionRows renders one inventory section, or its failure.
func sectionRows[T any](p *printer, title string, s model.Section[T], headers []string, statusCol int, row func(T) []string) {
	if !s.OK() {
		p.heading(title, "")
		p.sectionFailed(s.Error)
		return
	}
	count := itoa(len(s.Rows))
	if s.Total > len(s.Rows) {
		count = fmt.Sprintf("%d of %d", len(s.Rows), s.Total)
	}
	p.heading(title, count)
	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, row(r))
	}
	p.table(headers, rows, statusCol)
}

func (p *printer) inventory(v model.InventoryView) {
	sectionRows(p, "Servers", v.Servers, []string{"MBPKGID", "FQDN", "PACKAGE", "LOCATION", "INSTALLED"}, -1,
		func(r model.ServerRow) []string {
			return []string{itoa(r.MBPkgID), r.FQDN, format.FormatOptional(r.Package), itoa(r.Location), format.FormatBool(r.Installed)}
		})
	sectionRows(p, "Locations", v.Locations, []string{"ID", "NAME", "IATA", "CONTINENT", "DISABLED"}, -1,
		func(r model.LocationRow) []string {
			return []string{itoa(r.ID), r.Name, format.FormatOptional(r.IATACode), format.FormatOptional(r.Continent), format.FormatBool(r.Disabled)}
		})
	sectionRows(p, "Packages", v.Packages, []string{"ID", "NAME", "CITY", "RAM", "DISK", "CPU"}, -1,
		func(r model.PackageRow) []string {
			return []string{itoa(r.ID), r.Name, format.FormatOptional(r.City), format.FormatBytes(r.RAMBytes),
				format.FormatGigabytes(r.DiskGB), itoa(r.CPUCores)}
		})
	sectionRows(p, "Images", v.Images, []string{"ID", "OS", "SIZE", "TYPE"}, -1,
		func(r model.ImageRow) []string {
			return []string{itoa(r.ID), format.FormatOptional(r.OS), format.FormatOptional(r.Size), format.FormatOptional(r.Type)}
		})
	sectionRows(p, "Zones", v.Zones, []string{"ID", "NAME", "TYPE"}, -1,
		func(r model.ZoneRow) []string {
			return []string{itoa(r.ID), r.Name, format.FormatOptional(r.Type)}
		})
	sectionRows(p, "SSH keys", v.SSHKeys, []string{"ID", "NAME", "FINGERPRINT"}, -1,
		func(r model.SSHKeyRow) []string {
			return []string{itoa(r.ID), r.Name, format.FormatOptional(r.Fingerprint)}
		})

	p.heading("Account", "")
	if !v.Account.OK() {
		p.sectionFailed(v.Account.Error)
	} else {
		for _, a := range v.Account.Rows {
			p.field("name", a.FullName)
			p.field("email", a.Email)
			p.field("company", a.Company)
			p.field("address", strings.TrimSpace(a.Address1+" "+a.Address2))
			p.field("city", strings.TrimSpace(strings.Join([]string{a.City, a.State, a.Postcode}, " ")))
			p.field("country", a.Country)
		}
	}

	sectionRows(p, "Invoices", v.Invoices, []string{"ID", "DATE", "DUE", "STATUS", "TOTAL"}, 3,
		func(r model.InvoiceRow) []string {
			return []string{itoa(r.ID), format.FormatOptional(r.Date), format.FormatOptional(r.DueDate), r.Status, format.FormatMoney(r.Total)}
		})
}

func (p *printer) zone(v model.ZoneView) {
	p.heading("Zone "+itoa(v.ID), "")
	p.field("name", v.Name)
	p.field("type", v.Type)
	if v.SOA != nil {
		p.field("primary", v.SOA.Primary)
		p.field("hostmaster", v.SOA.Hostmaster)
		p.field("serial", v.SOA.Serial)
		p.field("ttl", itoa(v.SOA.TTL))
	} else {
		p.line(p.st.label.Render("soa"), p.st.dim.Render(format.Placeholder))
	}
	for _, ns := range v.NS {
		p.field("ns", ns)
	}

	p.heading("Records", itoa(len(v.Records)))
	rows := make([][]string, 0, len(v.Records))
	for _, r := range v.Records {
		prio := ""
		if r.Prio != nil {
			prio = itoa(*r.Prio)
		}
		rows = append(rows, []string{itoa(r.ID), r.Name, r.Type, r.Content, itoa(r.TTL), prio})
	}
	p.table([]string{"ID", "NAME", "TYPE", "CONTENT", "TTL", "PRIO"}, rows, -1)
}
