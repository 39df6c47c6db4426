package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minhtran205/fashion-shop/internal/cache"
	"github.com/minhtran205/fashion-shop/internal/logging"
	"github.com/minhtran205/fashion-shop/internal/models"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 60 * time.Second
)

type DashboardHandler struct {
	DB    *gorm.DB
	Cache *cache.Cache
}

type DailyRevenue struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
	Count   int64   `json:"count"`
}

type DashboardStats struct {
	Summary struct {
		Users    int64   `json:"users"`
		Products int64   `json:"products"`
		Orders   int64   `json:"orders"`
		Revenue  float64 `json:"revenue"`
	} `json:"summary"`
	ChartData    []DailyRevenue `json:"chart_data"`
	LatestOrders []models.Order `json:"latest_orders"`
}

// GetStats serves the admin dashboard. The aggregation touches four tables,
// so the result sits behind a short-lived redis cache; a cold or unreachable
// cache just means recomputing.
func (h *DashboardHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard_stats")

	if h.Cache != nil {
		var cached DashboardStats
		hit, err := h.Cache.Get(ctx, statsCacheKey, &cached)
		if err != nil {
			c.Logger().Errorf("cache get error: %v", err)
		}
		if hit {
			return c.JSON(http.StatusOK, cached)
		}
	}

	var stats DashboardStats

	if err := h.DB.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&stats.Summary.Users).Error; err != nil {
		l.Error("dashboard_stats_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&models.Product{}).Count(&stats.Summary.Products).Error; err != nil {
		l.Error("dashboard_stats_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&models.Order{}).Count(&stats.Summary.Orders).Error; err != nil {
		l.Error("dashboard_stats_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var revenue struct{ Total float64 }
	if err := h.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0) as total").
		Where("status <> ?", models.OrderStatusCancelled).
		Scan(&revenue).Error; err != nil {
		l.Error("dashboard_stats_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	stats.Summary.Revenue = revenue.Total

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	stats.ChartData = make([]DailyRevenue, 0)
	if err := h.DB.Model(&models.Order{}).
		Select("date(created_at) as day, COALESCE(SUM(total_price), 0) as revenue, COUNT(*) as count").
		Where("created_at >= ? AND status <> ?", sevenDaysAgo, models.OrderStatusCancelled).
		Group("date(created_at)").
		Order("day ASC").
		Scan(&stats.ChartData).Error; err != nil {
		l.Error("dashboard_stats_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	stats.LatestOrders = make([]models.Order, 0)
	if err := h.DB.Preload("User").
		Order("created_at DESC").
		Limit(5).
		Find(&stats.LatestOrders).Error; err != nil {
		l.Error("dashboard_stats_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
			c.Logger().Errorf("cache set error: %v", err)
		}
	}

	return c.JSON(http.StatusOK, stats)
}
