package controllers

import (
	"context"
	"net/http"

	"github.com/stockpinghq/stockping-backend/api/responses"
	"github.com/stockpinghq/stockping-backend/api/validators"
	"github.com/stockpinghq/stockping-backend/internal/digest"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
	pkgerrors "github.com/stockpinghq/stockping-backend/pkg/errors"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

type digestRunner interface {
	Run(ctx context.Context, frequency enums.DigestFrequency) (*digest.Result, error)
}

// DigestRunBody selects the cadence for an on-demand digest run.
type DigestRunBody struct {
	Frequency string `json:"frequency" validate:"omitempty,oneof=daily weekly"`
}

// DigestRunNow triggers one synchronous digest pass and returns the full
// run summary, tenant errors included.
func DigestRunNow(pipeline digestRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body DigestRunBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		frequency := enums.DigestFrequency(body.Frequency)
		if frequency == "" {
			frequency = enums.DigestFrequencyDaily
		}

		result, err := pipeline.Run(r.Context(), frequency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "digest run failed"))
			return
		}
		responses.WriteSuccess(w, result)
	}
}
