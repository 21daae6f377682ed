package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/route"
	"github.com/garyjia/billed/internal/domain/workflow"
	"github.com/garyjia/billed/internal/interfaces/http/view"
	"github.com/garyjia/billed/pkg/utils"
)

// maxReceiptSize bounds receipt uploads
const maxReceiptSize = 10 << 20

// StoreProvider returns the store acting for a session user
type StoreProvider interface {
	ForUser(user entity.User) port.Store
}

// BillsExporter writes formatted bills as a downloadable file
type BillsExporter interface {
	WriteBills(w io.Writer, bills []service.FormattedBill) error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	router     *Router
	renderer   *view.Renderer
	sessions   *SessionCodec
	stores     StoreProvider
	receipts   port.ReceiptStorage
	events     port.EventPublisher
	exporter   BillsExporter
	modalWidth int
	logger     Logger
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// NotFound renders the error page for unknown paths
func (h *Handlers) NotFound(c *gin.Context) {
	h.router.MountError(c, route.Login, http.StatusNotFound, "Erreur 404")
}

// LoginPage handles GET /
func (h *Handlers) LoginPage(c *gin.Context) {
	h.mountLogin(c, http.StatusOK, "")
}

func (h *Handlers) mountLogin(c *gin.Context, status int, message string) {
	body, err := h.renderer.Login(view.LoginPage{Error: message})
	if !h.check(c, route.Login, err) {
		return
	}
	h.router.Mount(c, route.Login, status, body)
}

// Login handles POST /login. The password is not checked.
func (h *Handlers) Login(c *gin.Context) {
	user := entity.User{
		Type:  entity.UserType(c.PostForm("type")),
		Email: c.PostForm("email"),
	}
	if err := utils.ValidateEmail(user.Email); err != nil || !user.Valid() {
		h.mountLogin(c, http.StatusBadRequest, "Email ou type d'utilisateur invalide")
		return
	}

	if err := h.sessions.Write(c, user); err != nil {
		h.logger.Error("Failed to write session", "error", err)
		h.mountLogin(c, http.StatusInternalServerError, "Erreur 500")
		return
	}

	h.logger.Info("User logged in", "email", user.Email, "type", string(user.Type))

	nav := &requestNavigator{}
	if user.IsAdmin() {
		nav.Navigate(route.Dashboard)
	} else {
		nav.Navigate(route.Bills)
	}
	nav.Redirect(c)
}

// Logout handles POST /logout
func (h *Handlers) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	redirect(c, route.Login)
}

func (h *Handlers) newBills(user entity.User, nav port.Navigator, modal port.ModalPresenter) *service.Bills {
	return service.NewBills(service.BillsDeps{
		Store:      h.stores.ForUser(user),
		Navigator:  nav,
		Modal:      modal,
		Logger:     h.logger,
		ModalWidth: h.modalWidth,
	})
}

// Bills handles GET /employee/bills. With ?receipt=<url> the receipt modal
// is opened for the matching bill.
func (h *Handlers) Bills(c *gin.Context) {
	user, _ := UserFrom(c)
	modal := &modalPresenter{}
	bills := h.newBills(user, &requestNavigator{}, modal)

	data, err := bills.GetBills(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list bills", "error", err, "email", user.Email)
		body, renderErr := h.renderer.Bills(view.BillsPage{Error: err})
		if !h.check(c, route.Bills, renderErr) {
			return
		}
		h.router.Mount(c, route.Bills, http.StatusInternalServerError, body)
		return
	}

	if receipt := c.Query("receipt"); receipt != "" && hasReceipt(data, receipt) {
		bills.HandleClickIconEye(attrIcon{port.BillURLAttr: receipt})
	}

	body, err := h.renderer.Bills(view.BillsPage{Data: data, Modal: modal.content})
	if !h.check(c, route.Bills, err) {
		return
	}
	h.router.Mount(c, route.Bills, http.StatusOK, body)
}

func hasReceipt(bills []service.FormattedBill, fileURL string) bool {
	for _, b := range bills {
		if b.Bill.FileURL == fileURL {
			return true
		}
	}
	return false
}

// NewBillButton handles POST /employee/bills/new
func (h *Handlers) NewBillButton(c *gin.Context) {
	user, _ := UserFrom(c)
	nav := &requestNavigator{}
	h.newBills(user, nav, nil).HandleClickNewBill()
	nav.Redirect(c)
}

// ExportBills handles GET /employee/bills/export.xlsx
func (h *Handlers) ExportBills(c *gin.Context) {
	user, _ := UserFrom(c)

	data, err := h.newBills(user, nil, nil).GetBills(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list bills for export", "error", err, "email", user.Email)
		h.router.MountError(c, route.Bills, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WriteBills(&buf, view.SortByDateDesc(data)); err != nil {
		h.logger.Error("Failed to export bills", "error", err, "email", user.Email)
		h.router.MountError(c, route.Bills, http.StatusInternalServerError, "Erreur 500")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="notes-de-frais.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// NewBillPage handles GET /employee/bill/new
func (h *Handlers) NewBillPage(c *gin.Context) {
	h.mountNewBill(c, http.StatusOK, view.NewBillPage{})
}

func (h *Handlers) mountNewBill(c *gin.Context, status int, page view.NewBillPage) {
	body, err := h.renderer.NewBill(page)
	if !h.check(c, route.NewBill, err) {
		return
	}
	h.router.Mount(c, route.NewBill, status, body)
}

// SubmitNewBill handles POST /employee/bill/new
func (h *Handlers) SubmitNewBill(c *gin.Context) {
	user, _ := UserFrom(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxReceiptSize+1<<20)

	form := service.NewBillForm{
		Type:       c.PostForm("type"),
		Name:       c.PostForm("name"),
		Date:       c.PostForm("date"),
		Amount:     c.PostForm("amount"),
		VAT:        c.PostForm("vat"),
		Pct:        c.PostForm("pct"),
		Commentary: c.PostForm("commentary"),
	}

	nav := &requestNavigator{}
	newBill := service.NewNewBill(service.NewBillDeps{
		Store:     h.stores.ForUser(user),
		Navigator: nav,
		Receipts:  h.receipts,
		Events:    h.events,
		Logger:    h.logger,
		User:      user,
	})

	if err := newBill.ValidateForm(form); err != nil {
		h.failNewBill(c, form, err)
		return
	}
	if err := h.attachReceipt(c, newBill); err != nil {
		h.failNewBill(c, form, err)
		return
	}

	if _, err := newBill.HandleSubmit(c.Request.Context(), form); err != nil {
		h.failNewBill(c, form, err)
		return
	}

	nav.Redirect(c)
}

func (h *Handlers) attachReceipt(c *gin.Context, newBill *service.NewBill) error {
	header, err := c.FormFile("file")
	if err != nil {
		return service.ErrMissingReceipt
	}
	if header.Size > maxReceiptSize {
		return service.ErrUnsupportedReceipt
	}

	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	return newBill.HandleChangeFile(c.Request.Context(), header.Filename, content)
}

func (h *Handlers) failNewBill(c *gin.Context, form service.NewBillForm, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrInvalidForm) ||
		errors.Is(err, service.ErrMissingReceipt) ||
		errors.Is(err, service.ErrUnsupportedReceipt) {
		status = http.StatusBadRequest
	}
	h.mountNewBill(c, status, view.NewBillPage{Form: form, Error: err.Error()})
}

// Dashboard handles GET /admin/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	user, _ := UserFrom(c)
	dashboard := service.NewDashboard(h.stores.ForUser(user), h.logger)

	grouped, err := dashboard.ListByStatus(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list bills", "error", err, "email", user.Email)
		h.router.MountError(c, route.Dashboard, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := h.renderer.Dashboard(grouped)
	if !h.check(c, route.Dashboard, err) {
		return
	}
	h.router.Mount(c, route.Dashboard, http.StatusOK, body)
}

// Decide handles POST /admin/dashboard/:id
func (h *Handlers) Decide(c *gin.Context) {
	user, _ := UserFrom(c)
	dashboard := service.NewDashboard(h.stores.ForUser(user), h.logger).WithEvents(h.events)

	id := c.Param("id")
	status := entity.BillStatus(c.PostForm("status"))
	if _, err := dashboard.Decide(c.Request.Context(), id, status, c.PostForm("commentAdmin")); err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, entity.ErrInvalidStatus):
			code = http.StatusBadRequest
		case errors.Is(err, entity.ErrBillNotFound):
			code = http.StatusNotFound
		case errors.Is(err, workflow.ErrInvalidTransition):
			code = http.StatusConflict
		}
		h.logger.Error("Failed to decide on bill", "error", err, "id", id, "status", string(status))
		h.router.MountError(c, route.Dashboard, code, err.Error())
		return
	}

	nav := &requestNavigator{}
	nav.Navigate(route.Dashboard)
	nav.Redirect(c)
}

// check renders the error page when a view failed to render
func (h *Handlers) check(c *gin.Context, r route.Route, err error) bool {
	if err == nil {
		return true
	}
	h.logger.Error("Failed to render view", "error", err, "route", r.String())
	h.router.MountError(c, r, http.StatusInternalServerError, "Erreur 500")
	return false
}
