package argo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/codes"
)

// FetchDashboard pulls the aggregated category arrays for the logged
// in student. The result is kept on the client, Dashboard() returns
// the last fetched snapshot.
func (c *Client) FetchDashboard(ctx context.Context) (*Dashboard, error) {
	ctx, span := tracer.Start(ctx, "client:FetchDashboard")
	defer span.End()

	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"dataultimoaggiornamento": "1970-01-01 00:00:00",
		}).
		Post("/dashboard/dashboard")
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	if res.StatusCode() >= 400 {
		span.SetStatus(codes.Error, "dashboard request rejected")
		return nil, fmt.Errorf("dashboard returned %d", res.StatusCode())
	}

	var envelope struct {
		Data struct {
			Dati []Dashboard `json:"dati"`
		} `json:"data"`
	}
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse dashboard")
		return nil, err
	}
	if len(envelope.Data.Dati) == 0 {
		return nil, fmt.Errorf("dashboard response carried no data")
	}

	dash := envelope.Data.Dati[0]
	c.dashboard = &dash
	return c.dashboard, nil
}

func (c *Client) Dashboard() *Dashboard {
	return c.dashboard
}

func (c *Client) getList(ctx context.Context, endpoint string) ([]Record, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{}).
		Post(endpoint)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	if res.StatusCode() >= 400 {
		return nil, fmt.Errorf("%s returned %d", endpoint, res.StatusCode())
	}

	var envelope struct {
		Data []Record `json:"data"`
	}
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *Client) GetDettagliProfilo(ctx context.Context) (Record, error) {
	if err := c.requireAuth(); err != nil {
		return Record{}, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{}).
		Post("/dettaglioprofilo")
	if err != nil {
		return Record{}, &TransportError{Cause: err}
	}
	if res.StatusCode() >= 400 {
		return Record{}, fmt.Errorf("dettaglioprofilo returned %d", res.StatusCode())
	}

	var envelope struct {
		Data Record `json:"data"`
	}
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		return Record{}, err
	}
	return envelope.Data, nil
}

func (c *Client) GetOrarioGiornaliero(ctx context.Context) ([]Record, error) {
	return c.getList(ctx, "/orario-giorno")
}

func (c *Client) GetCorsiRecupero(ctx context.Context) ([]Record, error) {
	return c.getList(ctx, "/corsirecupero")
}

func (c *Client) GetVotiScrutinio(ctx context.Context) ([]Record, error) {
	return c.getList(ctx, "/votiscrutinio")
}

func (c *Client) GetRicevimenti(ctx context.Context) ([]Record, error) {
	return c.getList(ctx, "/ricevimenti")
}

func (c *Client) GetCurriculum(ctx context.Context) ([]Record, error) {
	return c.getList(ctx, "/curriculum")
}

// FetchExtras fans the side calls out concurrently with a settle-all
// policy: a failing call logs a warning and leaves its slot empty
// instead of aborting the siblings.
func (c *Client) FetchExtras(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "client:FetchExtras")
	defer span.End()

	if c.dashboard == nil {
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	run := func(name string, fetch func(context.Context) ([]Record, error), assign func([]Record)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := fetch(ctx)
			if err != nil {
				slog.WarnContext(ctx, "side fetch failed", "endpoint", name, "err", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assign(records)
		}()
	}

	run("orario-giorno", c.GetOrarioGiornaliero, func(r []Record) { c.dashboard.Orario = r })
	run("corsirecupero", c.GetCorsiRecupero, func(r []Record) { c.dashboard.CorsiRecupero = r })
	run("votiscrutinio", c.GetVotiScrutinio, func(r []Record) { c.dashboard.VotiScrutinio = r })
	run("ricevimenti", c.GetRicevimenti, func(r []Record) { c.dashboard.Ricevimenti = r })
	run("curriculum", c.GetCurriculum, func(r []Record) { c.dashboard.Curriculum = r })

	wg.Add(1)
	go func() {
		defer wg.Done()
		profilo, err := c.GetDettagliProfilo(ctx)
		if err != nil {
			slog.WarnContext(ctx, "side fetch failed", "endpoint", "dettaglioprofilo", "err", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		c.dashboard.Profilo = profilo
	}()

	wg.Wait()
}
