package reports

import (
	"context"
	"sort"
	"time"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/utils"
)

// Trend classification tolerance: quarter-over-quarter average moves inside
// half a day read as noise.
const trendToleranceDays = 0.5

type StageDurationSummary struct {
	Stage      string  `json:"stage"`
	AvgDays    float64 `json:"avg_days"`
	MedianDays float64 `json:"median_days"`
	P75Days    float64 `json:"p75_days"`
	P90Days    float64 `json:"p90_days"`
	SampleSize int     `json:"sample_size"`
}

type StageKillRate struct {
	Stage        string  `json:"stage"`
	EnteredCount int     `json:"entered_count"`
	KilledCount  int     `json:"killed_count"`
	KillRatePct  float64 `json:"kill_rate_pct"`
}

type FunnelStage struct {
	Stage         string  `json:"stage"`
	EnteredCount  int     `json:"entered_count"`
	AdvancedCount int     `json:"advanced_count"`
	DroppedCount  int     `json:"dropped_count"`
	LeakagePct    float64 `json:"leakage_pct"`
}

type QuarterVelocity struct {
	Quarter    string    `json:"quarter"`
	AvgDays    float64   `json:"avg_days"`
	SampleSize int       `json:"sample_size"`
	Trend      string    `json:"trend"`
	start      time.Time `json:"-"`
}

type VelocityResponse struct {
	StageSummaries []StageDurationSummary `json:"stage_summaries"`
	KillRates      []StageKillRate        `json:"kill_rates"`
	Funnel         []FunnelStage          `json:"funnel"`
	QuarterTrend   []QuarterVelocity      `json:"quarter_trend"`
}

type durationSample struct {
	days float64
	at   time.Time
}

// GetDealVelocity reconstructs per-stage duration windows from the
// transition log and derives kill rates, funnel leakage and the
// quarter-over-quarter velocity trend.
//
// Data-quality assumption: the log is complete. Missing events silently
// shorten the reconstructed windows for the stages they would have closed;
// ordering problems are neutralized by sorting per deal before the walk.
func GetDealVelocity(ctx context.Context) (*VelocityResponse, error) {
	deals, err := models.ListDeals(ctx)
	if err != nil {
		return nil, err
	}
	events, err := models.LoadTransitionEvents(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDealVelocity(deals, events, time.Now().UTC()), nil
}

func BuildDealVelocity(deals []*models.Deal, events []*models.PipelineTransitionEvent, now time.Time) *VelocityResponse {
	eventsByDeal := make(map[int][]*models.PipelineTransitionEvent)
	for _, event := range events {
		eventsByDeal[event.DealId] = append(eventsByDeal[event.DealId], event)
	}
	for _, dealEvents := range eventsByDeal {
		sort.SliceStable(dealEvents, func(i, j int) bool {
			return dealEvents[i].CreatedAt.Before(dealEvents[j].CreatedAt)
		})
	}

	samplesByStage := make(map[models.PipelineStatus][]durationSample)
	entered := make(map[models.PipelineStatus]int)
	killedAt := make(map[models.PipelineStatus]int)
	advanced := make(map[models.PipelineStatus]int)

	for _, deal := range deals {
		stageStart := deal.CreatedAt

		for _, event := range eventsByDeal[deal.ID] {
			days := event.CreatedAt.Sub(stageStart).Hours() / 24
			samplesByStage[event.FromStage] = append(samplesByStage[event.FromStage],
				durationSample{days: days, at: event.CreatedAt})

			entered[event.ToStage]++
			if event.ToStage == models.PipelineStatusKilled {
				killedAt[event.FromStage]++
			}
			if event.ToStage == event.FromStage.NextStage() {
				advanced[event.FromStage]++
			}
			stageStart = event.CreatedAt
		}

		// Open-ended sample for the live stage; terminal deals have no
		// live stage to accrue time in.
		if !deal.Status.IsTerminal() {
			days := now.Sub(stageStart).Hours() / 24
			samplesByStage[deal.Status] = append(samplesByStage[deal.Status],
				durationSample{days: days, at: now})
		}
	}

	response := &VelocityResponse{
		StageSummaries: []StageDurationSummary{},
		KillRates:      []StageKillRate{},
		Funnel:         []FunnelStage{},
		QuarterTrend:   []QuarterVelocity{},
	}

	for _, stage := range models.PipelineSequence {
		samples := samplesByStage[stage]
		days := make([]float64, len(samples))
		for i, sample := range samples {
			days[i] = sample.days
		}

		summary := StageDurationSummary{Stage: string(stage), SampleSize: len(days)}
		if len(days) > 0 {
			summary.AvgDays = round1(mean(days))
			summary.MedianDays = round1(percentile(days, 50))
			summary.P75Days = round1(percentile(days, 75))
			summary.P90Days = round1(percentile(days, 90))
		}
		response.StageSummaries = append(response.StageSummaries, summary)

		killRate := StageKillRate{
			Stage:        string(stage),
			EnteredCount: entered[stage],
			KilledCount:  killedAt[stage],
		}
		if killRate.EnteredCount > 0 {
			killRate.KillRatePct = round2(float64(killRate.KilledCount) / float64(killRate.EnteredCount) * 100)
		}
		response.KillRates = append(response.KillRates, killRate)

		funnel := FunnelStage{
			Stage:         string(stage),
			EnteredCount:  entered[stage],
			AdvancedCount: advanced[stage],
		}
		if dropped := funnel.EnteredCount - funnel.AdvancedCount; dropped > 0 {
			funnel.DroppedCount = dropped
		}
		if funnel.EnteredCount > 0 {
			funnel.LeakagePct = round2(float64(funnel.EnteredCount-funnel.AdvancedCount) / float64(funnel.EnteredCount) * 100)
		}
		response.Funnel = append(response.Funnel, funnel)
	}

	response.QuarterTrend = buildQuarterTrend(samplesByStage)
	return response
}

func buildQuarterTrend(samplesByStage map[models.PipelineStatus][]durationSample) []QuarterVelocity {
	type quarterBucket struct {
		start time.Time
		days  []float64
	}
	buckets := make(map[string]*quarterBucket)
	for _, samples := range samplesByStage {
		for _, sample := range samples {
			label, start := utils.QuarterOf(sample.at)
			bucket, ok := buckets[label]
			if !ok {
				bucket = &quarterBucket{start: start}
				buckets[label] = bucket
			}
			bucket.days = append(bucket.days, sample.days)
		}
	}

	trend := make([]QuarterVelocity, 0, len(buckets))
	for label, bucket := range buckets {
		trend = append(trend, QuarterVelocity{
			Quarter:    label,
			AvgDays:    round1(mean(bucket.days)),
			SampleSize: len(bucket.days),
			start:      bucket.start,
		})
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].start.Before(trend[j].start)
	})

	for i := range trend {
		if i == 0 {
			trend[i].Trend = "flat"
			continue
		}
		previous := trend[i-1].AvgDays
		switch {
		case trend[i].AvgDays < previous-trendToleranceDays:
			trend[i].Trend = "faster"
		case trend[i].AvgDays > previous+trendToleranceDays:
			trend[i].Trend = "slower"
		default:
			trend[i].Trend = "flat"
		}
	}
	return trend
}
