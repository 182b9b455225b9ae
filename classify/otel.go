package classify

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "gosight/classify"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
