package reports

import (
	"context"

	"github.com/gallagherpc/deals_backend/finance"
	"github.com/gallagherpc/deals_backend/models"
)

// Synthesized-assumption defaults for deals that carry no stored pro-forma
// assumptions. Buildable square footage uses a 30% lot-coverage heuristic
// over aggregate acreage with a 5,000 sf floor.
const (
	sfPerAcre          = 43560.0
	lotCoverageRatio   = 0.30
	minBuildableSf     = 5000.0
	defaultRentPerSf   = 14.50
	defaultCostPerSf   = 165.0
	defaultVacancyPct  = 7.0
	defaultCollLossPct = 1.0
	defaultOpexPct     = 38.0
	defaultLtcPct      = 65.0
	defaultRatePct     = 6.5
	defaultExitCapPct  = 7.0
	defaultSalePct     = 2.0
	defaultAmortYears  = 30
	defaultHoldYears   = 5
	defaultGrowthPct   = 3.0
)

// DealSnapshot is the flattened per-deal view every analysis (except the
// debt maturity wall, which needs raw financing rows) computes over.
type DealSnapshot struct {
	Deal             *models.Deal                `json:"deal"`
	JurisdictionName string                      `json:"jurisdiction_name"`
	AcreageTotal     float64                     `json:"acreage_total"`
	TriageScore      *float64                    `json:"triage_score"`
	Assumptions      finance.ProFormaAssumptions `json:"assumptions"`
	ProForma         finance.ProFormaResult      `json:"pro_forma"`
}

func (s *DealSnapshot) IsActive() bool {
	return !s.Deal.Status.IsTerminal()
}

// RiskTier bands the resolved score: A (Low Risk) >= 80, B >= 60, C >= 40,
// D below, Unscored when no source resolves.
func (s *DealSnapshot) RiskTier() string {
	if s.TriageScore == nil {
		return "Unscored"
	}
	switch score := *s.TriageScore; {
	case score >= 80:
		return "A (Low Risk)"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	default:
		return "D"
	}
}

// LoadDealSnapshots pulls the organization's deals with parcels, financing
// and jurisdiction, resolves triage scores, and runs the pro-forma once per
// deal. Read-only.
func LoadDealSnapshots(ctx context.Context) ([]*DealSnapshot, error) {
	deals, err := models.ListDeals(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := models.LoadTriageScores(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDealSnapshots(deals, scores), nil
}

// BuildDealSnapshots is the pure assembly step over already-loaded rows.
func BuildDealSnapshots(deals []*models.Deal, scores map[int]float64) []*DealSnapshot {
	snapshots := make([]*DealSnapshot, 0, len(deals))
	for _, deal := range deals {
		acreage, _ := deal.Acreage().Float64()

		assumptions := deal.StoredAssumptions()
		if assumptions == nil {
			defaults := defaultAssumptions(acreage)
			assumptions = &defaults
		}

		snapshot := &DealSnapshot{
			Deal:             deal,
			JurisdictionName: deal.JurisdictionName(),
			AcreageTotal:     acreage,
			Assumptions:      *assumptions,
			ProForma:         finance.ComputeProForma(*assumptions),
		}
		if score, ok := scores[deal.ID]; ok {
			s := score
			snapshot.TriageScore = &s
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

func defaultAssumptions(acreage float64) finance.ProFormaAssumptions {
	buildableSf := acreage * sfPerAcre * lotCoverageRatio
	if buildableSf < minBuildableSf {
		buildableSf = minBuildableSf
	}
	return finance.ProFormaAssumptions{
		BuildableSf:       buildableSf,
		RentPerSfAnnual:   defaultRentPerSf,
		VacancyRatePct:    defaultVacancyPct,
		CollectionLossPct: defaultCollLossPct,
		OpexRatioPct:      defaultOpexPct,
		CostPerSf:         defaultCostPerSf,
		LoanToCostPct:     defaultLtcPct,
		InterestRatePct:   defaultRatePct,
		AmortYears:        defaultAmortYears,
		HoldPeriodYears:   defaultHoldYears,
		RentGrowthPct:     defaultGrowthPct,
		ExitCapRatePct:    defaultExitCapPct,
		CostOfSalePct:     defaultSalePct,
	}
}

func activeSnapshots(snapshots []*DealSnapshot) []*DealSnapshot {
	active := make([]*DealSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active
}
