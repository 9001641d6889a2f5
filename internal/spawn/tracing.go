package spawn

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/udisondev/la2spawn/internal/spawn")
