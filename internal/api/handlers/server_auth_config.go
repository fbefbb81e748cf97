package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"warden.dev/warden/internal/api/middleware"
	"warden.dev/warden/internal/domain"
	apperrors "warden.dev/warden/internal/pkg/errors"
	"warden.dev/warden/internal/pkg/logger"
	"warden.dev/warden/internal/provider"
	"warden.dev/warden/internal/usecase"
)

// ListURI is the provider list; successful submissions redirect here.
const ListURI = "/auth/"

// NewURI is the provider chooser.
const NewURI = "/auth/config/new/"

// Permission flag captions shown next to the edit form checkboxes.
const (
	captionRegistration = "Allow users to register new accounts using this provider. If you disable " +
		"registration, users can still use this provider to log in to existing accounts, but will " +
		"not be able to create new accounts."
	captionLink = "Allow users to link account credentials for this provider to existing accounts. " +
		"There is normally no reason to disable this unless you are trying to move away from a " +
		"provider and want to stop users from creating new account links."
	captionUnlink = "Allow users to unlink account credentials for this provider from existing " +
		"accounts. If you disable this, accounts will be permanently bound to provider accounts."
)

type page struct {
	Title string
	Crumb string
}

type flagRow struct {
	Name    string
	Label   string
	Caption string
	Checked bool
}

type historyRow struct {
	Title string
	When  string
}

type editPage struct {
	page
	IsNew        bool
	ActionURI    string
	CancelURI    string
	Button       string
	ProviderName string
	StatusLabel  string
	StatusTone   string
	Errors       []string
	Flags        []flagRow
	Fields       []provider.FormField
	History      []historyRow
}

type configRow struct {
	ProviderName   string
	ProviderType   string
	ProviderDomain string
	StatusLabel    string
	StatusTone     string
	EditURI        string
}

type listPage struct {
	page
	CanAdd  bool
	Configs []configRow
}

type chooserRow struct {
	DisplayName string
	Description string
	AddURI      string
}

type chooserPage struct {
	page
	Providers []chooserRow
}

type notFoundPage struct {
	page
	Message string
}

// permissionForm binds the permission flags of the edit form. Values are
// integers; a missing flag is 0 and any non-zero value is true.
type permissionForm struct {
	AllowRegistration string `form:"allowRegistration"`
	AllowLink         string `form:"allowLink"`
	AllowUnlink       string `form:"allowUnlink"`
}

func (f permissionForm) parse() (usecase.PermissionFlags, []string) {
	var errs []string
	parseFlag := func(name, raw string) bool {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return false
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, name+" must be 0 or 1.")
			return false
		}
		return n != 0
	}
	flags := usecase.PermissionFlags{
		AllowRegistration: parseFlag("allowRegistration", f.AllowRegistration),
		AllowLink:         parseFlag("allowLink", f.AllowLink),
		AllowUnlink:       parseFlag("allowUnlink", f.AllowUnlink),
	}
	return flags, errs
}

// NewConfig handles GET|POST /auth/config/new/:kind.
func (s *Server) NewConfig(c *gin.Context) {
	s.editConfig(c, usecase.ResolveInput{ProviderKind: c.Param("kind")})
}

// EditConfig handles GET|POST /auth/config/edit/:id.
func (s *Server) EditConfig(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.renderNotFound(c)
		return
	}
	s.editConfig(c, usecase.ResolveInput{ConfigID: id})
}

func (s *Server) editConfig(c *gin.Context, in usecase.ResolveInput) {
	ctx := c.Request.Context()
	viewer := viewerFromCtx(c)

	res, err := s.editor.Resolve(ctx, viewer, in)
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) || errors.Is(err, usecase.ErrProviderNotFound) {
			logger.Debug("auth provider config not resolvable",
				zap.String("request_id", middleware.GetRequestID(ctx)),
				zap.Error(err),
			)
			s.renderNotFound(c)
			return
		}
		_ = c.Error(err)
		return
	}

	var form usecase.FormState
	if c.Request.Method == http.MethodPost {
		var pf permissionForm
		var bindErrs []string
		if err := c.ShouldBindWith(&pf, binding.FormPost); err != nil {
			bindErrs = append(bindErrs, "The form could not be read.")
		}
		flags, flagErrs := pf.parse()
		out, err := s.editor.Submit(ctx, res, usecase.Submission{
			Request:       c.Request,
			Flags:         flags,
			FlagErrors:    append(bindErrs, flagErrs...),
			Actor:         actorFromCtx(c),
			ContentSource: contentSourceWeb,
		})
		if err != nil {
			if errors.Is(err, domain.ErrNoEffect) {
				err = apperrors.ErrNoEffectf(res.Config.ProviderClass).WithCause(err)
			}
			_ = c.Error(err)
			return
		}
		if out.Applied != nil {
			c.Redirect(http.StatusSeeOther, ListURI)
			return
		}
		form = out.Form
	} else {
		form = s.editor.InitialForm(res)
	}

	data, err := s.buildEditPage(c, res, form)
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.render(c, http.StatusOK, "provider_edit.html", data)
}

func (s *Server) buildEditPage(c *gin.Context, res *usecase.Resolution, form usecase.FormState) (editPage, error) {
	data := editPage{
		IsNew:        res.IsNew,
		ProviderName: res.Provider.ProviderName(),
		Errors:       form.Errors,
		Flags: []flagRow{
			{Name: "allowRegistration", Label: "Allow Registration", Caption: captionRegistration, Checked: form.Flags.AllowRegistration},
			{Name: "allowLink", Label: "Allow Linking Accounts", Caption: captionLink, Checked: form.Flags.AllowLink},
			{Name: "allowUnlink", Label: "Allow Unlinking Accounts", Caption: captionUnlink, Checked: form.Flags.AllowUnlink},
		},
	}
	data.StatusLabel, data.StatusTone = statusTag(res.Config.Enabled)

	if res.IsNew {
		data.Title = "Add Authentication Provider"
		data.Crumb = "Add Provider"
		data.Button = "Add Provider"
		data.CancelURI = NewURI
		data.ActionURI = NewURI + res.Provider.Kind()
	} else {
		data.Title = "Edit Authentication Provider"
		data.Crumb = "Edit Provider"
		data.Button = "Save"
		data.CancelURI = ListURI
		data.ActionURI = editURI(res.Config.ID)
	}

	fields := &provider.Form{}
	res.Provider.ExtendEditForm(fields, form.Properties, form.Issues)
	data.Fields = fields.Fields

	history, err := s.editor.History(c.Request.Context(), res)
	if err != nil {
		return editPage{}, err
	}
	desc := res.Provider.Describe()
	for _, tx := range history {
		data.History = append(data.History, historyRow{
			Title: transactionTitle(tx, desc),
			When:  tx.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		})
	}
	return data, nil
}

// ListConfigs handles GET /auth/.
func (s *Server) ListConfigs(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := viewerFromCtx(c)

	configs, err := s.editor.ListVisible(ctx, viewer)
	if err != nil {
		_ = c.Error(err)
		return
	}
	available, err := s.editor.AvailableProviders(ctx, viewer)
	if err != nil {
		_ = c.Error(err)
		return
	}

	data := listPage{
		page:   page{Title: "Authentication Providers"},
		CanAdd: len(available) > 0,
	}
	for _, cfg := range configs {
		row := configRow{
			ProviderName:   cfg.ProviderClass,
			ProviderType:   cfg.ProviderType,
			ProviderDomain: cfg.ProviderDomain,
		}
		if p, ok := s.editor.ProviderFor(cfg); ok {
			row.ProviderName = p.ProviderName()
			row.EditURI = editURI(cfg.ID)
		}
		row.StatusLabel, row.StatusTone = statusTag(cfg.Enabled)
		data.Configs = append(data.Configs, row)
	}
	s.render(c, http.StatusOK, "provider_list.html", data)
}

// ChooseProvider handles GET /auth/config/new/.
func (s *Server) ChooseProvider(c *gin.Context) {
	available, err := s.editor.AvailableProviders(c.Request.Context(), viewerFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	data := chooserPage{page: page{Title: "Add Authentication Provider", Crumb: "Add Provider"}}
	for _, desc := range available {
		data.Providers = append(data.Providers, chooserRow{
			DisplayName: desc.DisplayName,
			Description: desc.Description,
			AddURI:      NewURI + desc.Kind,
		})
	}
	s.render(c, http.StatusOK, "provider_new.html", data)
}

func (s *Server) renderNotFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "not_found.html", notFoundPage{
		page:    page{Title: "Not Found"},
		Message: "The authentication provider you requested does not exist, or you do not have permission to edit it.",
	})
}

func (s *Server) render(c *gin.Context, status int, name string, data interface{}) {
	c.Render(status, render.HTML{Template: s.templates, Name: name, Data: data})
}

func editURI(id int64) string {
	return "/auth/config/edit/" + strconv.FormatInt(id, 10)
}
