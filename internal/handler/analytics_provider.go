package handler

import (
	"time"

	"github.com/schoolsite/internal/service"
)

type analyticsProvider interface {
	Dashboard(now time.Time) (service.Dashboard, error)
	HourlyTrafficTrend(now time.Time, hours int) ([]service.HourlyTrafficPoint, error)
	RecordSiteVisit(visitorID string, now time.Time) error
}
