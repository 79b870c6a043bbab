package middleware

import (
	"time"

	"catalog/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// RequestMetrics records the count and latency of every request, labelled by
// the matched route pattern so that path parameters do not explode cardinality.
func RequestMetrics(recorder *metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not written the response yet.
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		recorder.RecordRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
