package scan

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "gosight/scan"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
