package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"sunshare-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional; nil reports the database as disconnected.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// StatusReporter is implemented by the event bus publisher.
type StatusReporter interface {
	Status() string
}

type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB     int `json:"allocMb"`
	HeapInUseMB int `json:"heapInUseMb"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Collector gathers health for /health/json.
type Collector struct {
	Rdb      *redis.Client
	DB       DBPinger
	EventBus StatusReporter
}

// Collect pings the database and Redis, reads the request counters written by
// middleware.HealthMarker and reports the event bus state. The event bus is informational:
// only the database and Redis decide the overall status.
func (c *Collector) Collect(ctx context.Context) CollectResult {
	result := CollectResult{Dependencies: make(map[string]DepStatus)}

	dbStatus := DepStatus{Status: "disconnected"}
	if c.DB != nil {
		dbStatus = ping(func() error { return c.DB.PingContext(ctx) })
	}
	result.Dependencies["database"] = dbStatus

	redisStatus := DepStatus{Status: "disconnected"}
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()
	if c.Rdb != nil {
		redisStatus = ping(func() error { return c.Rdb.Ping(ctx).Err() })
		if redisStatus.Status == "connected" {
			startTimeMs = readTraffic(ctx, c.Rdb, &stats, startTimeMs)
		}
	}
	result.Dependencies["redis"] = redisStatus
	result.Traffic = stats

	if c.EventBus != nil {
		result.Dependencies["event_bus"] = DepStatus{Status: c.EventBus.Status()}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapInUseMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	if dbStatus.Status == "connected" && redisStatus.Status == "connected" {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}

func ping(fn func() error) DepStatus {
	start := time.Now()
	if err := fn(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// readTraffic fills stats from Redis and returns the process start time, seeding it on first use.
func readTraffic(ctx context.Context, rdb *redis.Client, stats *TrafficInfo, nowMs int64) int64 {
	vals, _ := rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	get := func(i int) string {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				return s
			}
		}
		return ""
	}

	startTimeMs := nowMs
	if t, err := strconv.ParseInt(get(4), 10, 64); err == nil {
		startTimeMs = t
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, nowMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(get(0))
	stats.FailedCount, _ = strconv.Atoi(get(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(get(2), 64)
	if countSum, _ := strconv.Atoi(get(3)); countSum > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
	}
	if last := get(5); last != "" {
		var lastReq map[string]interface{}
		if json.Unmarshal([]byte(last), &lastReq) == nil {
			stats.LastRequest = lastReq
		}
	}
	return startTimeMs
}
