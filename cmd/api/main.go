package main

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"classmark/internal/attendance"
	"classmark/internal/auth"
	"classmark/internal/config"
	"classmark/internal/geo"
	"classmark/internal/httpmiddleware"
	"classmark/internal/location"
	"classmark/internal/logging"
	"classmark/internal/metrics"
	"classmark/internal/qr"
	"classmark/internal/roster"
	"classmark/internal/schedule"
	"classmark/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	slots, err := schedule.Parse(cfg.Slots)
	if err != nil {
		return err
	}

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Warn("db not reachable", zap.Error(err))
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	rosterStore := roster.NewStore(db.Client)
	marks := attendance.NewRepository(db.Client)

	// Geofencing and teacher auth are independent toggles, not forked
	// deployments: a plain time-gated server is both switched off.
	var zone location.Source
	if cfg.GeofenceEnabled {
		zone = location.NewFileSource(cfg.LocationFile)
	}

	att := attendance.NewService(rosterStore, marks, slots, zone, logger)
	creds := auth.StaticCredentials{Username: cfg.TeacherUsername, Password: cfg.TeacherPassword}
	cooldown := httpmiddleware.NewCooldown(redisClient.Client, cfg.ScanCooldown)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(logger))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/mark-attendance", func(c *gin.Context) {
		var req struct {
			StudentID string     `json:"studentId"`
			DeviceID  string     `json:"deviceId"`
			Location  *geo.Point `json:"location"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if req.StudentID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Student ID is required."})
			return
		}
		if !cooldown.Allow(c.Request.Context(), req.DeviceID) {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Please wait a moment before scanning again."})
			return
		}

		conf, err := att.Mark(c.Request.Context(), req.StudentID, req.Location)
		if err != nil {
			status, reason := rejection(err)
			metrics.MarksRejected.WithLabelValues(reason).Inc()
			c.JSON(status, gin.H{"message": err.Error()})
			return
		}

		metrics.MarksAccepted.Inc()
		c.JSON(http.StatusOK, gin.H{
			"message": "Attendance marked successfully.",
			"name":    conf.Name,
			"slot":    conf.SlotLabel,
		})
	})

	r.GET("/students", func(c *gin.Context) {
		students, err := rosterStore.All(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to read roster"})
			return
		}
		out := make([]gin.H, 0, len(students))
		for _, st := range students {
			out = append(out, gin.H{"Student ID": st.ID, "Name": st.Name})
		}
		c.JSON(http.StatusOK, out)
	})

	r.POST("/login", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if !creds.Verify(req.Username, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		token, _, err := auth.Issue(req.Username, auth.RoleTeacher, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.TokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	teacherOnly := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if cfg.AuthEnabled {
		teacherOnly = auth.TeacherAuth(cfg.JWTSigningKey, cfg.JWTIssuer)
	}
	teacher := r.Group("/", teacherOnly)

	// Roster QR view: one scannable code per registered student.
	teacher.GET("/qr", func(c *gin.Context) {
		students, err := rosterStore.All(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to read roster"})
			return
		}
		out := make([]gin.H, 0, len(students))
		for _, st := range students {
			png, err := qr.PNG(st.ID, qr.DefaultSize)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "qr generation failed"})
				return
			}
			out = append(out, gin.H{
				"id":   st.ID,
				"name": st.Name,
				"png":  base64.StdEncoding.EncodeToString(png),
			})
		}
		c.JSON(http.StatusOK, out)
	})

	teacher.GET("/qr/:id", func(c *gin.Context) {
		st, err := rosterStore.Find(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to read roster"})
			return
		}
		if st == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "student not found"})
			return
		}
		png, err := qr.PNG(st.ID, qr.DefaultSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "qr generation failed"})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	// Roster upload.
	teacher.POST("/students", func(c *gin.Context) {
		var req []struct {
			ID   string `json:"id" binding:"required"`
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		for _, st := range req {
			if err := rosterStore.Upsert(c.Request.Context(), roster.Student{ID: st.ID, Name: st.Name}); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save roster"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"saved": len(req)})
	})

	teacher.GET("/attendance", func(c *gin.Context) {
		day := c.Query("date")
		if day == "" {
			day = attendance.DayOf(time.Now())
		}
		recs, err := marks.ListDay(c.Request.Context(), day)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to read attendance"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"day": day, "records": recs})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort),
			zap.Bool("geofence", cfg.GeofenceEnabled), zap.Bool("auth", cfg.AuthEnabled))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// rejection maps a mark error to its HTTP status and metric label.
func rejection(err error) (int, string) {
	switch {
	case errors.Is(err, attendance.ErrOutsideTimeWindow):
		return http.StatusBadRequest, "outside_time_window"
	case errors.Is(err, attendance.ErrLocationRequired):
		return http.StatusBadRequest, "location_required"
	case errors.Is(err, attendance.ErrDuplicateMark):
		return http.StatusBadRequest, "duplicate_mark"
	case errors.Is(err, attendance.ErrOutsideGeofence):
		return http.StatusForbidden, "outside_geofence"
	case errors.Is(err, attendance.ErrUnknownStudent):
		return http.StatusNotFound, "unknown_student"
	default:
		return http.StatusInternalServerError, "storage_unavailable"
	}
}

// CORS middleware for browser scanner clients.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
