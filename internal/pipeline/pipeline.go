package pipeline

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"bkcnorm/internal/booking"
	"bkcnorm/internal/domain"
	"bkcnorm/internal/normalize"
	"bkcnorm/internal/port"
)

// Config holds the read-only tables and knobs shared by every run.
type Config struct {
	// Fields is the compulsory field list; defaults to booking.ExtendedSchema.
	Fields []string
	KeyMap *normalize.KeyMap
	UOM    *normalize.UOMCanonicalizer
	// GrossWeightDivisor scales a numeric gross weight when > 0 (e.g. 1000 for kg -> t).
	GrossWeightDivisor float64
	// PortTimeout bounds a single port lookup when > 0.
	PortTimeout time.Duration
}

// Pipeline normalizes extracted booking records. It holds no per-record state
// and is safe for concurrent use.
type Pipeline struct {
	cfg      Config
	resolver port.PortResolver
	logger   *zap.Logger
}

// New validates cfg and builds a Pipeline. resolver may be nil, in which case
// the port stage is skipped and the extracted port code is kept.
func New(cfg Config, resolver port.PortResolver, logger *zap.Logger) (*Pipeline, error) {
	if cfg.KeyMap == nil {
		return nil, domain.ErrMissingKeyMap
	}
	if cfg.UOM == nil {
		return nil, domain.ErrMissingUOMTable
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields, _ = booking.SchemaFields(booking.SchemaExtended)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, resolver: resolver, logger: logger.Named("pipeline")}, nil
}

// Fields returns the compulsory field list.
func (p *Pipeline) Fields() []string {
	out := make([]string, len(p.cfg.Fields))
	copy(out, p.cfg.Fields)
	return out
}

// ExportColumns returns the external names of the compulsory fields followed
// by the derived container size type.
func (p *Pipeline) ExportColumns() []string {
	cols := make([]string, 0, len(p.cfg.Fields)+1)
	for _, f := range p.cfg.Fields {
		cols = append(cols, p.cfg.KeyMap.Rename(f))
	}
	return append(cols, p.cfg.KeyMap.Rename(booking.ContainerSizeType))
}

// Run normalizes rec in place and returns the normalized record, the external
// payload and a per-field report. A field that cannot be normalized is
// substituted and reported; Run always returns a complete result.
func (p *Pipeline) Run(ctx context.Context, rec *booking.Record) *Result {
	if rec == nil {
		rec = booking.NewRecord()
	}
	res := &Result{Record: rec}
	report := &res.Report

	p.completeFields(rec, report)
	p.normalizeDate(rec, report)
	p.cleanContainer(rec, report)
	p.canonicalizeUnits(rec, report)
	p.scaleGrossWeight(rec, report)
	p.resolvePort(ctx, rec, report)
	p.deriveFields(rec, report)

	payload, _ := p.cfg.KeyMap.Apply(rec).(*booking.Record)
	normalize.StringifyNumbers(payload)
	res.Payload = payload
	return res
}

func (p *Pipeline) completeFields(rec *booking.Record, report *Report) {
	for _, f := range normalize.MissingFields(rec, p.cfg.Fields) {
		report.add(StageComplete, f, StatusFallback, "missing, filled with empty value")
	}
	normalize.CompleteFields(rec, p.cfg.Fields)
}

func (p *Pipeline) normalizeDate(rec *booking.Record, report *Report) {
	v, _ := rec.Get(booking.DepartureDate)
	// The extractor is asked for a list of dates; the first one is the ETD.
	if list, ok := v.([]any); ok {
		v = nil
		if len(list) > 0 {
			v = list[0]
		}
	}
	raw := strings.TrimSpace(booking.StringValue(v))
	if raw == "" {
		rec.Set(booking.DepartureDate, "")
		report.add(StageDate, booking.DepartureDate, StatusSkipped, "empty")
		return
	}

	out, err := normalize.NormalizeDate(raw)
	rec.Set(booking.DepartureDate, out)
	if err != nil {
		p.logger.Warn("unable to parse date",
			zap.String("stage", StageDate),
			zap.String("field", booking.DepartureDate),
			zap.String("value", raw),
			zap.Error(err),
		)
		report.add(StageDate, booking.DepartureDate, StatusFallback, err.Error())
		return
	}
	report.add(StageDate, booking.DepartureDate, StatusOK, "")
}

func (p *Pipeline) cleanContainer(rec *booking.Record, report *Report) {
	raw := rec.GetString(booking.ContainerNumber)
	if strings.TrimSpace(raw) == "" {
		report.add(StageContainer, booking.ContainerNumber, StatusSkipped, "empty")
		return
	}

	cleaned := normalize.CleanContainerNumber(raw)
	rec.Set(booking.ContainerNumber, cleaned)
	if cleaned == "" {
		p.logger.Warn("invalid container number",
			zap.String("stage", StageContainer),
			zap.String("field", booking.ContainerNumber),
			zap.String("value", raw),
		)
		report.add(StageContainer, booking.ContainerNumber, StatusFallback, "failed ISO 6346 validation")
		return
	}
	report.add(StageContainer, booking.ContainerNumber, StatusOK, "")
}

func (p *Pipeline) canonicalizeUnits(rec *booking.Record, report *Report) {
	for _, f := range booking.UnitFields {
		if !rec.Has(f) {
			continue
		}
		raw := strings.TrimSpace(rec.GetString(f))
		if raw == "" {
			report.add(StageUOM, f, StatusSkipped, "empty")
			continue
		}
		code, ok := p.cfg.UOM.Lookup(raw)
		if !ok {
			p.logger.Debug("unit not in table, kept as is",
				zap.String("stage", StageUOM),
				zap.String("field", f),
				zap.String("value", raw),
			)
			report.add(StageUOM, f, StatusSkipped, "no synonym match, kept as is")
			continue
		}
		rec.Set(f, code)
		report.add(StageUOM, f, StatusOK, "")
	}
}

func (p *Pipeline) scaleGrossWeight(rec *booking.Record, report *Report) {
	if p.cfg.GrossWeightDivisor <= 0 {
		return
	}
	v, _ := rec.Get(booking.GrossWeight)
	w, ok := booking.Number(v)
	if !ok {
		report.add(StageWeight, booking.GrossWeight, StatusSkipped, "not numeric")
		return
	}
	scaled := strconv.FormatFloat(w/p.cfg.GrossWeightDivisor, 'f', -1, 64)
	rec.Set(booking.GrossWeight, json.Number(scaled))
	report.add(StageWeight, booking.GrossWeight, StatusOK, "")
}

func (p *Pipeline) resolvePort(ctx context.Context, rec *booking.Record, report *Report) {
	if p.resolver == nil {
		report.add(StagePort, booking.PortCode, StatusSkipped, "no resolver configured")
		return
	}
	desc := strings.TrimSpace(rec.GetString(booking.PortOfDischarge))
	if desc == "" {
		report.add(StagePort, booking.PortCode, StatusSkipped, "no port of discharge")
		return
	}
	country := strings.ToUpper(strings.TrimSpace(rec.GetString(booking.CountryCode)))

	if p.cfg.PortTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PortTimeout)
		defer cancel()
	}

	code, err := p.resolver.Resolve(ctx, desc, country)
	code = strings.TrimSpace(code)
	if err == nil && code == "" {
		err = domain.ErrPortNotResolved
	}
	if err != nil {
		rec.Set(booking.PortCode, "")
		p.logger.Warn("port code not resolved",
			zap.String("stage", StagePort),
			zap.String("description", desc),
			zap.String("country_code", country),
			zap.Error(err),
		)
		report.add(StagePort, booking.PortCode, StatusFallback, err.Error())
		return
	}
	rec.Set(booking.PortCode, code)
	report.add(StagePort, booking.PortCode, StatusOK, "")
}

func (p *Pipeline) deriveFields(rec *booking.Record, report *Report) {
	mode := strings.TrimSpace(rec.GetString(booking.ShipmentMode))
	if mode != "" {
		if load, ok := normalize.InferShipmentMode(mode); ok {
			rec.Set(booking.ShipmentMode, load)
			mode = load
			report.add(StageDerive, booking.ShipmentMode, StatusOK, "")
		} else {
			report.add(StageDerive, booking.ShipmentMode, StatusSkipped, "unmapped mode left unchanged")
		}
	}

	sizeType, ok := normalize.DeriveContainerSizeType(mode, rec.GetString(booking.ContainerSize))
	if !ok {
		report.add(StageDerive, booking.ContainerSizeType, StatusSkipped, "shipment mode or container size missing")
		return
	}
	rec.Set(booking.ContainerSizeType, sizeType)
	report.add(StageDerive, booking.ContainerSizeType, StatusOK, "")
}
