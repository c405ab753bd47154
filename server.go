package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/gallagherpc/deals_backend/middlewares"
	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/models/reports"
	"github.com/gallagherpc/deals_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("gallagher-deals")

func handleError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func createJurisdictionHandler(c *gin.Context) {
	var input models.NewJurisdiction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	jurisdiction, err := models.CreateJurisdiction(c.Request.Context(), &input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, jurisdiction)
}

func createDealHandler(c *gin.Context) {
	var input models.NewDeal
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	deal, err := models.CreateDeal(c.Request.Context(), &input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

func listDealsHandler(c *gin.Context) {
	deals, err := models.ListDeals(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

func getDealHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	deal, err := models.GetDeal(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

func updateDealTermsHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.DealTermsUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	deal, err := models.UpdateDealTerms(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

type transitionRequest struct {
	ToStage string `json:"to_stage" binding:"required"`
}

func transitionDealHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input transitionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	target, err := models.ParsePipelineStatus(input.ToStage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deal, err := models.TransitionDealStage(c.Request.Context(), id, target)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

func createParcelHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewParcel
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	parcel, err := models.CreateParcel(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, parcel)
}

func createFinancingHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewFinancing
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	financing, err := models.CreateFinancing(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, financing)
}

func createRiskEntryHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewRiskEntry
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	entry, err := models.CreateRiskEntry(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func createCapitalEntryHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewCapitalDeploymentEntry
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	entry, err := models.CreateCapitalDeploymentEntry(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func concentrationHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "reports.concentration")
	defer span.End()
	result, err := reports.GetPortfolioConcentration(ctx)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func debtMaturityHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "reports.debtMaturity")
	defer span.End()
	result, err := reports.GetDebtMaturityWall(ctx)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func velocityHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "reports.velocity")
	defer span.End()
	result, err := reports.GetDealVelocity(ctx)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func capitalDeploymentHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "reports.capitalDeployment")
	defer span.End()
	result, err := reports.GetCapitalDeployment(ctx)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func allocationHandler(c *gin.Context) {
	var request reports.AllocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	ctx, span := tracer.Start(c.Request.Context(), "reports.allocation")
	defer span.End()
	result, err := reports.GetCapitalAllocation(ctx, &request)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func exchangeHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	ctx, span := tracer.Start(c.Request.Context(), "reports.exchange")
	defer span.End()
	result, err := reports.GetExchangeMatches(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type stressRequest struct {
	Scenario string                  `json:"scenario"`
	Custom   *reports.StressScenario `json:"custom"`
}

func stressTestHandler(c *gin.Context) {
	var request stressRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var scenario reports.StressScenario
	switch {
	case request.Custom != nil:
		scenario = *request.Custom
		if scenario.Name == "" {
			scenario.Name = "custom"
		}
	case request.Scenario != "":
		preset, ok := reports.StressScenarioPreset(request.Scenario)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scenario: " + request.Scenario})
			return
		}
		scenario = preset
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "scenario or custom shocks required"})
		return
	}

	ctx, span := tracer.Start(c.Request.Context(), "reports.stressTest")
	defer span.End()
	result, err := reports.GetStressTest(ctx, &scenario)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func exportExcelHandler(c *gin.Context) {
	var allocation *reports.AllocationRequest
	if budget := c.Query("budget"); budget != "" {
		amount, err := utils.ParseDecimal(budget)
		if err != nil || !amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "budget must be a positive number"})
			return
		}
		allocation = &reports.AllocationRequest{Budget: amount}
	}

	ctx, span := tracer.Start(c.Request.Context(), "reports.exportExcel")
	defer span.End()
	file, err := reports.ExportPortfolioExcel(ctx, allocation)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("portfolio-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		config.LogError(config.GetLogger(), "server.go", "exportExcelHandler", "write workbook", nil, err)
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before the DB is ready; app endpoints return 503
	// until the readiness gate opens.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("X-Organization-Id", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	api := r.Group("/api", middlewares.OrganizationMiddleware())

	api.POST("/jurisdictions", createJurisdictionHandler)
	api.POST("/deals", createDealHandler)
	api.GET("/deals", listDealsHandler)
	api.GET("/deals/:id", getDealHandler)
	api.PUT("/deals/:id/terms", updateDealTermsHandler)
	api.POST("/deals/:id/transitions", transitionDealHandler)
	api.POST("/deals/:id/parcels", createParcelHandler)
	api.POST("/deals/:id/financing", createFinancingHandler)
	api.POST("/deals/:id/risk-entries", createRiskEntryHandler)
	api.POST("/deals/:id/capital-entries", createCapitalEntryHandler)

	api.GET("/reports/concentration", concentrationHandler)
	api.GET("/reports/debt-maturity", debtMaturityHandler)
	api.GET("/reports/velocity", velocityHandler)
	api.GET("/reports/capital-deployment", capitalDeploymentHandler)
	api.POST("/reports/allocation", allocationHandler)
	api.GET("/reports/exchange/:id", exchangeHandler)
	api.POST("/reports/stress-test", stressTestHandler)
	api.GET("/reports/export", exportExcelHandler)

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run blocking DDL; allow running migrations as a
	// separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}

// customErrorLogger logs only requests that recorded errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
