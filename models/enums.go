package models

import "errors"

type DealSku string

const (
	DealSkuMobileHomePark  DealSku = "MOBILE_HOME_PARK"
	DealSkuFlexIndustrial  DealSku = "FLEX_INDUSTRIAL"
	DealSkuSmallCommercial DealSku = "SMALL_COMMERCIAL"
	DealSkuMultifamily     DealSku = "MULTIFAMILY"
	DealSkuRetail          DealSku = "RETAIL"
	DealSkuOffice          DealSku = "OFFICE"
	DealSkuWarehouse       DealSku = "WAREHOUSE"
	DealSkuMixedUse        DealSku = "MIXED_USE"
)

func ParseDealSku(s string) (DealSku, error) {
	switch DealSku(s) {
	case DealSkuMobileHomePark, DealSkuFlexIndustrial, DealSkuSmallCommercial,
		DealSkuMultifamily, DealSkuRetail, DealSkuOffice, DealSkuWarehouse, DealSkuMixedUse:
		return DealSku(s), nil
	}
	return "", errors.New("invalid deal sku")
}

type PipelineStatus string

const (
	PipelineStatusIntake       PipelineStatus = "INTAKE"
	PipelineStatusScreening    PipelineStatus = "SCREENING"
	PipelineStatusUnderwriting PipelineStatus = "UNDERWRITING"
	PipelineStatusLoi          PipelineStatus = "LOI"
	PipelineStatusDueDiligence PipelineStatus = "DUE_DILIGENCE"
	PipelineStatusClosing      PipelineStatus = "CLOSING"
	PipelineStatusActive       PipelineStatus = "ACTIVE"
	PipelineStatusExitMarketed PipelineStatus = "EXIT_MARKETED"
	PipelineStatusExited       PipelineStatus = "EXITED"
	PipelineStatusKilled       PipelineStatus = "KILLED"
)

// PipelineSequence is the canonical stage order. KILLED sits outside the
// sequence and is reachable from any non-terminal stage.
var PipelineSequence = []PipelineStatus{
	PipelineStatusIntake,
	PipelineStatusScreening,
	PipelineStatusUnderwriting,
	PipelineStatusLoi,
	PipelineStatusDueDiligence,
	PipelineStatusClosing,
	PipelineStatusActive,
	PipelineStatusExitMarketed,
	PipelineStatusExited,
}

func ParsePipelineStatus(s string) (PipelineStatus, error) {
	if PipelineStatus(s) == PipelineStatusKilled {
		return PipelineStatusKilled, nil
	}
	for _, stage := range PipelineSequence {
		if PipelineStatus(s) == stage {
			return stage, nil
		}
	}
	return "", errors.New("invalid pipeline status")
}

func (s PipelineStatus) IsTerminal() bool {
	return s == PipelineStatusExited || s == PipelineStatusKilled
}

// NextStage returns the canonical next stage, or "" when s is the last
// sequence stage, KILLED, or unknown.
func (s PipelineStatus) NextStage() PipelineStatus {
	for i, stage := range PipelineSequence {
		if s == stage && i+1 < len(PipelineSequence) {
			return PipelineSequence[i+1]
		}
	}
	return ""
}

type TriageRunStatus string

const (
	TriageRunStatusQueued    TriageRunStatus = "Queued"
	TriageRunStatusSucceeded TriageRunStatus = "Succeeded"
	TriageRunStatusFailed    TriageRunStatus = "Failed"
)

// RiskEntrySourceTriage marks manually recorded risk entries that stand in
// for a triage score when no successful run exists.
const RiskEntrySourceTriage = "triage"

// UnspecifiedLender is the sentinel bucket for financing rows without a
// lender name, so lender concentration still sums to 100%.
const UnspecifiedLender = "Unspecified Lender"
