package timeline

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/riadevigo/buoyplanner/internal/timeline"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
