// Package view renders the HTML pages of the application.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sort"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/route"
)

//go:embed templates
var templatesFS embed.FS

const (
	pageLayout    = "layout.html"
	pageBills     = "pages/bills.html"
	pageError     = "pages/error.html"
	pageLoading   = "pages/loading.html"
	pageLogin     = "pages/login.html"
	pageNewBill   = "pages/new_bill.html"
	pageDashboard = "pages/dashboard.html"
)

var partials = []string{
	"partials/styles.html",
	"partials/modal.html",
	"partials/bill_row.html",
}

// Renderer holds the parsed templates. It is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}
	return NewRendererFS(sub)
}

// NewRendererFS parses templates from fsys
func NewRendererFS(fsys fs.FS) (*Renderer, error) {
	base, err := template.New("base").ParseFS(fsys, partials...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse partials: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{pageLayout, pageBills, pageError, pageLoading, pageLogin, pageNewBill, pageDashboard} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base template: %w", err)
		}
		t, err := clone.ParseFS(fsys, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

func (r *Renderer) render(page string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.pages[page].ExecuteTemplate(&buf, "page", data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", page, err)
	}
	return template.HTML(buf.String()), nil
}

// LayoutData is the frame every page is mounted into
type LayoutData struct {
	Body    template.HTML
	Sidebar bool
	Admin   bool

	WindowActive    bool
	MailActive      bool
	DashboardActive bool

	BillsPath     string
	NewBillPath   string
	DashboardPath string
}

// NewLayoutData builds the frame for r. The icon matching r is marked active.
func NewLayoutData(r route.Route, user entity.User, body template.HTML) LayoutData {
	return LayoutData{
		Body:            body,
		Sidebar:         r != route.Login,
		Admin:           user.IsAdmin(),
		WindowActive:    r == route.Bills,
		MailActive:      r == route.NewBill,
		DashboardActive: r == route.Dashboard,
		BillsPath:       route.Bills.Path(),
		NewBillPath:     route.NewBill.Path(),
		DashboardPath:   route.Dashboard.Path(),
	}
}

// Layout writes the full document
func (r *Renderer) Layout(w io.Writer, data LayoutData) error {
	if err := r.pages[pageLayout].ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render layout: %w", err)
	}
	return nil
}

// BillsPage is the input of the employee bills view
type BillsPage struct {
	Data    []service.FormattedBill
	Loading bool
	Error   error
	Modal   *port.ModalContent
}

type billsData struct {
	Rows          []service.FormattedBill
	Modal         *port.ModalContent
	NewBillAction string
	ExportPath    string
}

// NewBillAction is where the new bill button posts to
const NewBillAction = "/employee/bills/new"

// ExportPath serves the bills spreadsheet
const ExportPath = "/employee/bills/export.xlsx"

// Bills renders the bills table. Rows are ordered by raw date, most recent
// first. An error renders the error view with its message as is.
func (r *Renderer) Bills(page BillsPage) (template.HTML, error) {
	if page.Loading {
		return r.render(pageLoading, nil)
	}
	if page.Error != nil {
		return r.Error(page.Error.Error())
	}

	return r.render(pageBills, billsData{
		Rows:          SortByDateDesc(page.Data),
		Modal:         page.Modal,
		NewBillAction: NewBillAction,
		ExportPath:    ExportPath,
	})
}

// SortByDateDesc returns a copy of bills ordered by raw date, descending
func SortByDateDesc(bills []service.FormattedBill) []service.FormattedBill {
	rows := make([]service.FormattedBill, len(bills))
	copy(rows, bills)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Bill.Date > rows[j].Bill.Date
	})
	return rows
}

// Error renders the error view
func (r *Renderer) Error(message string) (template.HTML, error) {
	return r.render(pageError, message)
}

// LoginPage is the input of the login view
type LoginPage struct {
	Error string
}

// Login renders the login forms
func (r *Renderer) Login(page LoginPage) (template.HTML, error) {
	return r.render(pageLogin, page)
}

// NewBillPage is the input of the new bill form view
type NewBillPage struct {
	Form  service.NewBillForm
	Error string
}

type newBillData struct {
	NewBillPage
	Action       string
	ExpenseTypes []string
}

// NewBill renders the new bill form, refilled with the submitted values
func (r *Renderer) NewBill(page NewBillPage) (template.HTML, error) {
	if page.Form.Type == "" {
		page.Form.Type = entity.ExpenseTypes[0]
	}
	return r.render(pageNewBill, newBillData{
		NewBillPage:  page,
		Action:       route.NewBill.Path(),
		ExpenseTypes: entity.ExpenseTypes,
	})
}

// DashboardSection is one status group of the dashboard
type DashboardSection struct {
	Status entity.BillStatus
	Label  string
	Bills  []service.FormattedBill
}

type dashboardData struct {
	Sections     []DashboardSection
	ActionPrefix string
}

// Dashboard renders the bills grouped by status, pending first
func (r *Renderer) Dashboard(grouped map[entity.BillStatus][]service.FormattedBill) (template.HTML, error) {
	sections := make([]DashboardSection, 0, len(entity.BillStatuses()))
	for _, status := range entity.BillStatuses() {
		sections = append(sections, DashboardSection{
			Status: status,
			Label:  sectionLabels[status],
			Bills:  SortByDateDesc(grouped[status]),
		})
	}
	return r.render(pageDashboard, dashboardData{
		Sections:     sections,
		ActionPrefix: route.Dashboard.Path(),
	})
}

var sectionLabels = map[entity.BillStatus]string{
	entity.BillStatusPending:  "En attente",
	entity.BillStatusAccepted: "Validé",
	entity.BillStatusRefused:  "Refusé",
}
