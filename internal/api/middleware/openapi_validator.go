package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warden.dev/warden/internal/api/apispec"
	"warden.dev/warden/internal/pkg/logger"
)

// JWT and capabilities are enforced by their own middleware.
var skipAuthentication = &openapi3filter.Options{
	AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error { return nil },
}

// MustOpenAPIValidator is NewOpenAPIValidator that panics on setup failure.
func MustOpenAPIValidator(basePath string) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(basePath)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

// NewOpenAPIValidator checks requests under basePath, and the responses their
// handlers write, against the embedded API document. Document paths omit
// basePath. Requests outside basePath or without a documented operation pass
// through, and errors left for ErrorHandler are not validated.
func NewOpenAPIValidator(basePath string) (gin.HandlerFunc, error) {
	doc, err := apispec.Load()
	if err != nil {
		return nil, err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}
	v := &openAPIValidator{router: router, basePath: normalizeBasePath(basePath)}
	return v.handle, nil
}

type openAPIValidator struct {
	router   routers.Router
	basePath string
}

func (v *openAPIValidator) handle(c *gin.Context) {
	req, ok := v.documentRequest(c.Request)
	if !ok {
		c.Next()
		return
	}

	route, pathParams, err := v.router.FindRoute(req)
	if err != nil {
		if isPathNotFoundError(err) {
			c.Next()
			return
		}
		abortWithOpenAPIError(c, http.StatusBadRequest, "OPENAPI_ROUTE_INVALID", err.Error())
		return
	}

	in := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options:    skipAuthentication,
	}
	if err := openapi3filter.ValidateRequest(req.Context(), in); err != nil {
		abortWithOpenAPIError(c, http.StatusBadRequest, "OPENAPI_REQUEST_INVALID", err.Error())
		return
	}
	// Validation may have re-wrapped a consumed body.
	c.Request.Body = req.Body

	captured := newCapturedResponse(c.Writer)
	c.Writer = captured
	c.Next()
	c.Writer = captured.ResponseWriter

	if len(c.Errors) > 0 && !captured.Written() {
		return
	}
	v.checkResponse(c, in, captured)
	if err := captured.flush(); err != nil {
		logger.Warn("write validated response",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
}

// documentRequest returns a copy of r addressed by document path.
func (v *openAPIValidator) documentRequest(r *http.Request) (*http.Request, bool) {
	path, ok := trimBasePath(v.basePath, r.URL.Path)
	if !ok {
		return nil, false
	}
	out := r.Clone(r.Context())
	out.URL.Path = path
	out.URL.RawPath = ""
	if r.URL.RawPath != "" {
		out.URL.RawPath, _ = trimBasePath(v.basePath, r.URL.RawPath)
	}
	return out, true
}

func (v *openAPIValidator) checkResponse(c *gin.Context, in *openapi3filter.RequestValidationInput, w *capturedResponse) {
	out := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: in,
		Status:                 w.Status(),
		Header:                 w.Header().Clone(),
		Options:                skipAuthentication,
	}
	if w.body.Len() > 0 {
		out.SetBodyBytes(w.body.Bytes())
	}
	err := openapi3filter.ValidateResponse(c.Request.Context(), out)
	if err == nil {
		return
	}
	logger.Error("OpenAPI response validation failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", w.Status()),
		zap.Error(err),
	)
	w.replaceJSON(http.StatusInternalServerError, gin.H{
		"code":    "OPENAPI_RESPONSE_INVALID",
		"message": "response does not conform to OpenAPI contract",
	})
}

func normalizeBasePath(basePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return ""
	}
	return "/" + basePath
}

// trimBasePath maps a request path to its document path. ok is false for
// paths outside basePath.
func trimBasePath(basePath, path string) (string, bool) {
	switch {
	case basePath == "":
		if path == "" {
			return "/", true
		}
		return path, true
	case path == basePath:
		return "/", true
	case strings.HasPrefix(path, basePath+"/"):
		return strings.TrimPrefix(path, basePath), true
	default:
		return path, false
	}
}

func isPathNotFoundError(err error) bool {
	if errors.Is(err, routers.ErrPathNotFound) {
		return true
	}
	var routeErr *routers.RouteError
	return errors.As(err, &routeErr) && routeErr.Reason == routers.ErrPathNotFound.Error()
}

func abortWithOpenAPIError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

// capturedResponse holds a handler's response until it has been validated.
// status stays 0 until the handler writes.
type capturedResponse struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
}

func newCapturedResponse(w gin.ResponseWriter) *capturedResponse {
	return &capturedResponse{ResponseWriter: w}
}

func (w *capturedResponse) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *capturedResponse) WriteHeaderNow() {
	w.WriteHeader(http.StatusOK)
}

func (w *capturedResponse) Write(data []byte) (int, error) {
	w.WriteHeaderNow()
	return w.body.Write(data)
}

func (w *capturedResponse) WriteString(s string) (int, error) {
	w.WriteHeaderNow()
	return w.body.WriteString(s)
}

func (w *capturedResponse) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *capturedResponse) Size() int {
	return w.body.Len()
}

func (w *capturedResponse) Written() bool {
	return w.status != 0
}

func (w *capturedResponse) replaceJSON(status int, payload gin.H) {
	data, _ := json.Marshal(payload)
	w.status = status
	w.body.Reset()
	w.body.Write(data)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
}

func (w *capturedResponse) flush() error {
	w.ResponseWriter.WriteHeader(w.Status())
	if w.body.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.body.Bytes())
	return err
}
