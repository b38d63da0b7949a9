package api

import "time"

// Agent is a configured scraping agent.
type Agent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	SpaceID     string    `json:"spaceId"`
	ConfigType  string    `json:"configType"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// AgentPage is one page of the agent catalogue.
type AgentPage struct {
	Items          []Agent `json:"items"`
	TotalCount     int     `json:"totalCount"`
	PageIndex      int     `json:"pageIndex"`
	RecordsPerPage int     `json:"recordsPerPage"`
}

// Run is one execution of an agent.
type Run struct {
	ID          string    `json:"id"`
	AgentID     string    `json:"agentId"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
	RowCount    int       `json:"rowCount,omitempty"`
	ErrorCount  int       `json:"errorCount,omitempty"`
}

// RunPage is one page of an agent's run history.
type RunPage struct {
	Items      []Run `json:"items"`
	TotalCount int   `json:"totalCount"`
	PageIndex  int   `json:"pageIndex"`
}

// StartRunOptions is the body of the start operation. Field names follow the
// control plane's wire casing.
type StartRunOptions struct {
	Parallelism            int               `json:"Parallelism,omitempty"`
	ParallelMaxConcurrency int               `json:"ParallelMaxConcurrency,omitempty"`
	ParallelExport         string            `json:"ParallelExport,omitempty"`
	ProxyPoolID            string            `json:"ProxyPoolId,omitempty"`
	InputParameters        map[string]string `json:"InputParameters,omitempty"`
	Timeout                int               `json:"Timeout,omitempty"`
	IsExclusive            bool              `json:"IsExclusive,omitempty"`
	IsWaitOnFailure        bool              `json:"IsWaitOnFailure,omitempty"`
	IsRunSynchronously     bool              `json:"IsRunSynchronously,omitempty"`
	LogLevel               string            `json:"LogLevel,omitempty"`
	LogMode                string            `json:"LogMode,omitempty"`
}

// Schedule triggers an agent on a cron expression.
type Schedule struct {
	ID         string `json:"id"`
	AgentID    string `json:"agentId"`
	Name       string `json:"name"`
	Cron       string `json:"cron"`
	TimeZone   string `json:"timeZone,omitempty"`
	IsEnabled  bool   `json:"isEnabled"`
	NextRunAt  string `json:"nextRunAt,omitempty"`
	LastRunAt  string `json:"lastRunAt,omitempty"`
	ProxyPool  string `json:"proxyPoolId,omitempty"`
	SpaceID    string `json:"spaceId,omitempty"`
	ConfigType string `json:"configType,omitempty"`
}

// ScheduleSpec is the create/update body for schedules.
type ScheduleSpec struct {
	AgentID   string `json:"agentId"`
	Name      string `json:"name"`
	Cron      string `json:"cron"`
	TimeZone  string `json:"timeZone,omitempty"`
	IsEnabled bool   `json:"isEnabled"`
}

// Space groups agents for access control and billing.
type Space struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AgentCount  int    `json:"agentCount,omitempty"`
}

// BillingUsage summarizes consumption for the current billing period.
type BillingUsage struct {
	PeriodStart    string  `json:"periodStart"`
	PeriodEnd      string  `json:"periodEnd"`
	PageCredits    int64   `json:"pageCredits"`
	UsedCredits    int64   `json:"usedCredits"`
	ExportRows     int64   `json:"exportRows"`
	EstimatedSpend float64 `json:"estimatedSpend,omitempty"`
}

// AgentAnalytics aggregates run outcomes for one agent over a window.
type AgentAnalytics struct {
	AgentID        string  `json:"agentId"`
	RunCount       int     `json:"runCount"`
	SuccessCount   int     `json:"successCount"`
	FailureCount   int     `json:"failureCount"`
	AvgDurationSec float64 `json:"avgDurationSec,omitempty"`
	RowsExtracted  int64   `json:"rowsExtracted,omitempty"`
}

// ProxyPool is a named pool of egress proxies runs can be pinned to.
type ProxyPool struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Region   string `json:"region,omitempty"`
	Size     int    `json:"size,omitempty"`
	IsShared bool   `json:"isShared,omitempty"`
}
