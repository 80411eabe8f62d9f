package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer возвращает трейсер глобального провайдера
// Пока SDK не зарегистрирован, спаны no-op
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Finish фиксирует ошибку в спане и завершает его
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
