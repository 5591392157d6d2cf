// Package ui serves the server-rendered directory and admin pages.
package ui

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"github.com/duynhne/advocate-service/internal/core/domain"
	logicv1 "github.com/duynhne/advocate-service/internal/logic/v1"
	webv1 "github.com/duynhne/advocate-service/internal/web/v1"
	"github.com/duynhne/advocate-service/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler renders the list and create views
type Handler struct {
	service *logicv1.AdvocateService
	tmpl    *template.Template
}

// NewHandler parses the embedded templates
func NewHandler(service *logicv1.AdvocateService) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{service: service, tmpl: tmpl}, nil
}

// RegisterRoutes mounts the UI. writeMiddleware guards only the form submit.
func RegisterRoutes(r gin.IRouter, h *Handler, writeMiddleware ...gin.HandlerFunc) {
	r.GET("/", h.List)
	r.GET("/admin", h.AdminForm)
	r.POST("/admin", append(append([]gin.HandlerFunc{}, writeMiddleware...), h.SubmitAdvocate)...)
}

type listView struct {
	Title   string
	Search  string
	Page    *domain.AdvocatePage
	PrevURL string
	NextURL string
}

// formValues echoes submitted input back into the form after a rejection
type formValues struct {
	FirstName         string
	LastName          string
	City              string
	Degree            string
	YearsOfExperience string
	PhoneNumber       string
}

type adminView struct {
	Title    string
	Options  domain.Options
	Form     formValues
	Selected map[string]bool
	Error    string
}

// List handles GET /
func (h *Handler) List(c *gin.Context) {
	q := domain.ParseSearchQuery(c.Query("search"), c.Query("page"), c.Query("limit"))

	page, err := h.service.ListAdvocates(c.Request.Context(), q)
	if err != nil {
		middleware.GetLoggerFromGinContext(c).Error("Failed to list advocates", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to fetch advocates")
		return
	}

	c.Render(http.StatusOK, render.HTML{Template: h.tmpl, Name: "list", Data: listView{
		Title:   "Solace Advocates",
		Search:  q.Search,
		Page:    page,
		PrevURL: pageURL(q, q.Page-1),
		NextURL: pageURL(q, q.Page+1),
	}})
}

// AdminForm handles GET /admin
func (h *Handler) AdminForm(c *gin.Context) {
	h.renderAdmin(c, http.StatusOK, formValues{}, nil, "")
}

// SubmitAdvocate handles POST /admin
func (h *Handler) SubmitAdvocate(c *gin.Context) {
	form := formValues{
		FirstName:         c.PostForm("firstName"),
		LastName:          c.PostForm("lastName"),
		City:              c.PostForm("city"),
		Degree:            c.PostForm("degree"),
		YearsOfExperience: c.PostForm("yearsOfExperience"),
		PhoneNumber:       c.PostForm("phoneNumber"),
	}
	specialties := c.PostFormArray("specialties")

	req := domain.CreateAdvocateRequest{
		FirstName:         form.FirstName,
		LastName:          form.LastName,
		City:              form.City,
		Degree:            form.Degree,
		Specialties:       specialties,
		YearsOfExperience: rawString(form.YearsOfExperience),
		PhoneNumber:       rawString(form.PhoneNumber),
	}

	logger := middleware.GetLoggerFromGinContext(c)
	advocate, err := h.service.CreateAdvocate(c.Request.Context(), req)
	if err != nil {
		if msg, ok := webv1.ValidationMessage(err); ok {
			h.renderAdmin(c, http.StatusBadRequest, form, specialties, msg)
			return
		}
		logger.Error("Failed to create advocate", zap.Error(err))
		h.renderAdmin(c, http.StatusInternalServerError, form, specialties, "Failed to create advocate")
		return
	}

	logger.Info("Advocate created from admin form", zap.Int64("advocate_id", advocate.ID))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) renderAdmin(c *gin.Context, status int, form formValues, specialties []string, errMsg string) {
	selected := make(map[string]bool, len(specialties))
	for _, s := range specialties {
		selected[s] = true
	}
	c.Render(status, render.HTML{Template: h.tmpl, Name: "admin", Data: adminView{
		Title:    "Add Advocate",
		Options:  h.service.Options(),
		Form:     form,
		Selected: selected,
		Error:    errMsg,
	}})
}

// rawString passes a form value through the same numeric parsing as JSON strings
func rawString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func pageURL(q domain.SearchQuery, page int) string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(q.Limit))
	return "/?" + v.Encode()
}
