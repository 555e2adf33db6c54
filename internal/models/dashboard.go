package models

// DashboardMetrics is the aggregate payload backing the dashboard view
type DashboardMetrics struct {
	TotalLeads        int64           `json:"total_leads"`
	QualifiedLeads    int64           `json:"qualified_leads"`
	StageCounts       map[Stage]int64 `json:"stage_counts"`
	AverageScore      float64         `json:"average_score"`
	PipelineValue     float64         `json:"pipeline_value"` // Best-effort sum of numeric lead values
	NotificationsSent int64           `json:"notifications_sent"`
	ResponsesReceived int64           `json:"responses_received"`
	RecentActivities  []Activity      `json:"recent_activities"`
}
