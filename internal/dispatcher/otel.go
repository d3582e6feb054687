package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nari/actlog/internal/dispatcher"

// meterProvider is the global provider unless a test swaps it.
var meterProvider = otel.GetMeterProvider

func meter() metric.Meter {
	return meterProvider().Meter(instrumentationName)
}
