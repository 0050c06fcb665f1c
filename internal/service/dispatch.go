package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/leshachaplin/eventrelay/internal/destination"
	"github.com/leshachaplin/eventrelay/internal/domain"
)

func (s *Service) Dispatch(ctx context.Context, in domain.Inbound) (Results, error) {
	l := s.logger.With().Str("request_id", in.RequestID).Logger()

	req, err := Parse(in.Body)
	if err != nil {
		l.Debug().Err(err).Msg("invalid request body")
		return Results{}, errInvalidJSON
	}
	if err := Validate(req); err != nil {
		l.Debug().Err(err).Msg("invalid event")
		return Results{}, err
	}

	rec := s.BuildRecord(req, in)
	// outbound calls are bounded by their own deadlines, not by the caller staying connected
	res := s.dispatch(context.WithoutCancel(ctx), req, rec)
	logResults(l.Debug(), rec, res)
	return res, nil
}

func (s *Service) Enqueue(ctx context.Context, in domain.Inbound) error {
	return s.pool.Process(ctx, domain.Job{ID: in.RequestID, Inbound: in})
}

func (s *Service) processJob(ctx context.Context, job domain.Job) error {
	req, err := Parse(job.Inbound.Body)
	if err != nil {
		return errors.Wrap(err, "parse event")
	}
	if err := Validate(req); err != nil {
		return errors.Wrap(err, "validate event")
	}

	rec := s.BuildRecord(req, job.Inbound)
	res := s.dispatch(ctx, req, rec)

	logResults(s.logger.Info().Str("request_id", job.ID), rec, res)
	return nil
}

// dispatch sends to every eligible destination concurrently and waits for all of them.
// Senders never fail, so the group is only a join.
func (s *Service) dispatch(ctx context.Context, req domain.Request, rec domain.Record) Results {
	res := Results{
		Meta:      destination.Skipped(),
		Analytics: destination.Skipped(),
		Ads:       destination.Skipped(),
	}

	var group errgroup.Group
	if r, ok := s.metaRequest(req, rec); ok {
		group.Go(func() error {
			res.Meta = s.sender.Send(ctx, r)
			return nil
		})
	}
	if r, ok := s.analyticsRequest(req, rec); ok {
		group.Go(func() error {
			res.Analytics = s.sender.Send(ctx, r)
			return nil
		})
	}
	if r, ok := s.adsRequest(req, rec); ok {
		group.Go(func() error {
			res.Ads = s.sender.Send(ctx, r)
			return nil
		})
	}
	_ = group.Wait()

	return res
}

func (s *Service) metaRequest(req domain.Request, rec domain.Record) (destination.Request, bool) {
	d, m := req.Data, req.Meta
	if d.MetaEvent == "" || m.MetaPixelID == "" || !s.cfg.Meta.Enabled() {
		return destination.Request{}, false
	}

	payload := destination.NewMetaPayload(rec, d.MetaEvent.String())
	return destination.NewMetaRequest(s.cfg.Meta, m.MetaPixelID.String(), m.MetaTestCode.String(), payload), true
}

func (s *Service) analyticsRequest(req domain.Request, rec domain.Record) (destination.Request, bool) {
	d, m := req.Data, req.Meta
	if d.GAEvent == "" || m.GAMeasurementID == "" || !s.cfg.Analytics.Enabled() {
		return destination.Request{}, false
	}

	payload := destination.NewAnalyticsPayload(rec, d.GAEvent.String())
	return destination.NewAnalyticsRequest(s.cfg.Analytics, m.GAMeasurementID.String(), payload), true
}

// adsRequest also requires the gclid cookie.
func (s *Service) adsRequest(req domain.Request, rec domain.Record) (destination.Request, bool) {
	d := req.Data
	if d.GadsConversionLabel == "" || d.CookieGclid == "" || !s.cfg.Ads.Enabled() {
		return destination.Request{}, false
	}

	payload := destination.NewAdsPayload(s.cfg.Ads, rec, d.GadsConversionLabel.String())
	return destination.NewAdsRequest(s.cfg.Ads, payload), true
}

func logResults(e *zerolog.Event, rec domain.Record, res Results) {
	e.Str("event_id", rec.EventID).
		Dict("results", zerolog.Dict().
			Str(destination.MetaName, res.Meta.Message).
			Str(destination.AnalyticsName, res.Analytics.Message).
			Str(destination.AdsName, res.Ads.Message)).
		Msg("event dispatched")
}
