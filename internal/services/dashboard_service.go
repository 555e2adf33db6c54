package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"leadflow/internal/models"
)

const dashboardCacheKey = "dashboard_metrics"

const recentActivityLimit = 10

// DashboardService computes aggregate pipeline metrics with a short TTL
// cache in front, busted on every write.
type DashboardService struct {
	leads      *LeadService
	activities *ActivityService
	cache      *gocache.Cache
	ttl        time.Duration
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(leads *LeadService, activities *ActivityService, ttl time.Duration) *DashboardService {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &DashboardService{
		leads:      leads,
		activities: activities,
		cache:      gocache.New(ttl, 2*ttl),
		ttl:        ttl,
	}
}

// GetMetrics returns the dashboard aggregate, served from cache when fresh
func (s *DashboardService) GetMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	if cached, found := s.cache.Get(dashboardCacheKey); found {
		return cached.(*models.DashboardMetrics), nil
	}

	leads, err := s.leads.List(ctx, "")
	if err != nil {
		return nil, err
	}

	metrics := &models.DashboardMetrics{
		TotalLeads:  int64(len(leads)),
		StageCounts: make(map[models.Stage]int64),
	}

	var scoreSum int64
	for _, lead := range leads {
		metrics.StageCounts[lead.Stage]++
		if lead.Stage == models.StageQualified {
			metrics.QualifiedLeads++
		}
		if lead.NotificationSent {
			metrics.NotificationsSent++
		}
		if lead.ResponseReceived {
			metrics.ResponsesReceived++
		}
		scoreSum += int64(lead.Score)
		metrics.PipelineValue += parseLeadValue(lead.Value)
	}
	if len(leads) > 0 {
		metrics.AverageScore = float64(scoreSum) / float64(len(leads))
	}

	recent, err := s.activities.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	metrics.RecentActivities = recent

	s.cache.Set(dashboardCacheKey, metrics, s.ttl)
	return metrics, nil
}

// Invalidate drops the cached aggregate after a write
func (s *DashboardService) Invalidate() {
	s.cache.Delete(dashboardCacheKey)
}

// parseLeadValue extracts a best-effort numeric amount from a free-form
// currency string like "$45,000". Unparseable values contribute zero.
func parseLeadValue(value string) float64 {
	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	parsed, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return parsed
}
