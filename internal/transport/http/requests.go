package http

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "gmlcli/internal/errors"
	"gmlcli/internal/liquidity"
	"gmlcli/internal/services"
)

// validate checks request payload structs. Shared across handlers; custom
// validators mirror the middleware package.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct converts validator errors to the API error shape
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var details []apierrors.ValidationError
	for _, fe := range err.(validator.ValidationErrors) {
		details = append(details, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %s validation", fe.Tag()),
		})
	}
	return apierrors.NewValidationErrors(details)
}

// ObservationPayload is one dated sample. A null value decodes to NaN so
// gaps survive the JSON round trip.
type ObservationPayload struct {
	Date  string   `json:"date" validate:"required,iso8601"`
	Value *float64 `json:"value"`
}

// SeriesPayload is an ordered list of observations
type SeriesPayload []ObservationPayload

func (p SeriesPayload) toSeries() (liquidity.Series, error) {
	if len(p) == 0 {
		return nil, nil
	}
	series := make(liquidity.Series, len(p))
	for i, obs := range p {
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			return nil, fmt.Errorf("observation %d: invalid date %q", i, obs.Date)
		}
		value := math.NaN()
		if obs.Value != nil {
			value = *obs.Value
		}
		series[i] = liquidity.Observation{Date: date, Value: value}
	}
	series.SortByDate()
	return series, nil
}

func toSeriesMap(payloads map[string]SeriesPayload) (map[string]liquidity.Series, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	out := make(map[string]liquidity.Series, len(payloads))
	for key, payload := range payloads {
		series, err := payload.toSeries()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = series
	}
	return out, nil
}

// MarketDataRequest carries every input series for analysis and
// cross-validation. All sections are optional; absent sections skip the
// corresponding analysis.
type MarketDataRequest struct {
	LiquidityIndex SeriesPayload            `json:"liquidity_index" validate:"omitempty,dive"`
	Aggregates     map[string]SeriesPayload `json:"aggregates" validate:"omitempty,dive,dive"`
	GDP            SeriesPayload            `json:"gdp" validate:"omitempty,dive"`
	BalanceSheets  map[string]SeriesPayload `json:"balance_sheets" validate:"omitempty,dive,dive"`
	AssetPrices    map[string]SeriesPayload `json:"asset_prices" validate:"omitempty,dive,dive"`
}

func (r MarketDataRequest) toMarketData() (services.MarketData, error) {
	var data services.MarketData
	var err error

	if data.LiquidityIndex, err = r.LiquidityIndex.toSeries(); err != nil {
		return data, fmt.Errorf("liquidity_index: %w", err)
	}
	if data.Aggregates, err = toSeriesMap(r.Aggregates); err != nil {
		return data, fmt.Errorf("aggregates: %w", err)
	}
	if data.GDP, err = r.GDP.toSeries(); err != nil {
		return data, fmt.Errorf("gdp: %w", err)
	}
	if data.BalanceSheets, err = toSeriesMap(r.BalanceSheets); err != nil {
		return data, fmt.Errorf("balance_sheets: %w", err)
	}
	if data.AssetPrices, err = toSeriesMap(r.AssetPrices); err != nil {
		return data, fmt.Errorf("asset_prices: %w", err)
	}
	return data, nil
}

// PercentChangeRequest asks for one reported percent change to be
// recomputed and compared. An omitted tolerance uses the configured
// default; an explicit zero demands an exact match.
type PercentChangeRequest struct {
	Name      string   `json:"name"`
	Current   *float64 `json:"current" validate:"required"`
	Previous  *float64 `json:"previous" validate:"required"`
	Reported  *float64 `json:"reported" validate:"required"`
	Tolerance *float64 `json:"tolerance" validate:"omitempty,gte=0"`
}

// RangeRequest asks for one value to be checked against the plausible
// range of its metric type
type RangeRequest struct {
	Name       string   `json:"name"`
	Value      *float64 `json:"value" validate:"required"`
	MetricType string   `json:"metric_type" validate:"required"`
	Context    string   `json:"context"`
}

// NamedValue is one element of a hierarchy check
type NamedValue struct {
	Name  string   `json:"name" validate:"required"`
	Value *float64 `json:"value"`
}

// HierarchyRequest asks for an ordered list of named values to be checked
// for non-decreasing order
type HierarchyRequest struct {
	Name   string       `json:"name"`
	Values []NamedValue `json:"values" validate:"required,min=2,dive"`
}
