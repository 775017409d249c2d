package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRouterSetupRegistersVersionedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	dg := NewDomainGroup("billing", "/billing")
	dg.GET("/invoices", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r := NewRouter(engine, WithAPIVersion("v2"))
	r.Register(dg)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v2/billing/invoices", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterUseAppliesMiddlewareBeforeRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	dg := NewDomainGroup("billing", "/billing")
	dg.GET("/invoices", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	})
	r.Register(dg)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/invoices", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDomainGroupSubgroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	dg := NewDomainGroup("catalog", "/catalog")
	sub := dg.Group("items", "/items")
	sub.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r := NewRouter(engine)
	r.Register(dg)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/items", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "catalog", dg.Name())
	assert.Equal(t, "/items", sub.Prefix())
}
