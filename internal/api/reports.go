package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pos-service/internal/export"
	"pos-service/internal/util"

	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboard(c *gin.Context) {
	stats, err := h.reports.DashboardSnapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":                 stats,
		"revenue_today_display": util.FormatCurrency(stats.RevenueToday),
	})
}

func (h *Handler) dailyReport(c *gin.Context) {
	day := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			badRequest(c, "Invalid date, expected YYYY-MM-DD", err)
			return
		}
		day = parsed
	}

	report, err := h.reports.DailyReport(c.Request.Context(), day)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// monthParams reads year and month, defaulting to the current month
func monthParams(c *gin.Context) (year, month int, ok bool) {
	now := time.Now()
	year, month = now.Year(), int(now.Month())

	var err error
	if v := c.Query("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			badRequest(c, "Invalid year", err)
			return 0, 0, false
		}
	}
	if v := c.Query("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil {
			badRequest(c, "Invalid month", err)
			return 0, 0, false
		}
	}
	return year, month, true
}

func (h *Handler) monthlyReport(c *gin.Context) {
	year, month, ok := monthParams(c)
	if !ok {
		return
	}

	report, err := h.reports.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) exportMonthlyReport(c *gin.Context) {
	year, month, ok := monthParams(c)
	if !ok {
		return
	}

	report, err := h.reports.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteMonthlyReportCSV(&buf, report); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sales-%04d-%02d.csv"`, year, month))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) revenueByMonth(c *gin.Context) {
	n := h.trendMonths
	if v := c.Query("months"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil {
			badRequest(c, "Invalid months", err)
			return
		}
	}

	buckets, err := h.reports.RevenueByMonth(c.Request.Context(), n)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": buckets})
}
