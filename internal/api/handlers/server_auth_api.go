package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warden.dev/warden/internal/domain"
	apperrors "warden.dev/warden/internal/pkg/errors"
	"warden.dev/warden/internal/provider"
)

// ListAuthProviders handles GET /auth/providers.
func (s *Server) ListAuthProviders(c *gin.Context) {
	ctx := c.Request.Context()
	configs, err := s.editor.ListVisible(ctx, viewerFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	configured := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		configured[cfg.ProviderClass] = true
	}

	descs := s.editor.ProviderTypes()
	items := make([]providerTypeDTO, 0, len(descs))
	for _, desc := range descs {
		items = append(items, toProviderTypeDTO(desc, configured[desc.Kind]))
	}
	c.JSON(http.StatusOK, listResponse[providerTypeDTO]{Items: items})
}

// ListAuthProviderConfigs handles GET /auth/configs.
func (s *Server) ListAuthProviderConfigs(c *gin.Context) {
	configs, err := s.editor.ListVisible(c.Request.Context(), viewerFromCtx(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	items := make([]providerConfigDTO, 0, len(configs))
	for _, cfg := range configs {
		p, _ := s.editor.ProviderFor(cfg)
		items = append(items, toProviderConfigDTO(cfg, p))
	}
	c.JSON(http.StatusOK, listResponse[providerConfigDTO]{Items: items})
}

// GetAuthProviderConfig handles GET /auth/configs/{config_id}.
func (s *Server) GetAuthProviderConfig(c *gin.Context) {
	id, ok := configIDParam(c)
	if !ok {
		return
	}
	cfg, err := s.editor.GetVisible(c.Request.Context(), viewerFromCtx(c), id)
	if err != nil {
		_ = c.Error(mapConfigError(err, id))
		return
	}
	p, _ := s.editor.ProviderFor(cfg)
	c.JSON(http.StatusOK, toProviderConfigDTO(cfg, p))
}

// ListAuthProviderConfigTransactions handles GET /auth/configs/{config_id}/transactions.
func (s *Server) ListAuthProviderConfigTransactions(c *gin.Context) {
	id, ok := configIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	viewer := viewerFromCtx(c)

	cfg, err := s.editor.GetVisible(ctx, viewer, id)
	if err != nil {
		_ = c.Error(mapConfigError(err, id))
		return
	}
	txs, err := s.editor.VisibleHistory(ctx, viewer, id)
	if err != nil {
		_ = c.Error(mapConfigError(err, id))
		return
	}

	var desc provider.TypeDescriptor
	if p, ok := s.editor.ProviderFor(cfg); ok {
		desc = p.Describe()
	}
	items := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		items = append(items, toTransactionDTO(tx, desc))
	}
	c.JSON(http.StatusOK, listResponse[transactionDTO]{Items: items})
}

func configIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("config_id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.ErrInvalidRequestFieldf("config_id"))
		return 0, false
	}
	return id, true
}

func mapConfigError(err error, id int64) error {
	if errors.Is(err, domain.ErrConfigNotFound) {
		return apperrors.ErrProviderConfigNotFoundf(id).WithCause(err)
	}
	return err
}
