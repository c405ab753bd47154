package models_test

import (
	"testing"

	"github.com/gallagherpc/deals_backend/models"
)

func TestNextStage(t *testing.T) {
	cases := map[models.PipelineStatus]models.PipelineStatus{
		models.PipelineStatusIntake:       models.PipelineStatusScreening,
		models.PipelineStatusClosing:      models.PipelineStatusActive,
		models.PipelineStatusExitMarketed: models.PipelineStatusExited,
		models.PipelineStatusExited:       "",
		models.PipelineStatusKilled:       "",
	}
	for from, want := range cases {
		if got := from.NextStage(); got != want {
			t.Errorf("NextStage(%s) = %q, want %q", from, got, want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, stage := range models.PipelineSequence {
		terminal := stage == models.PipelineStatusExited
		if stage.IsTerminal() != terminal {
			t.Errorf("IsTerminal(%s) = %v", stage, stage.IsTerminal())
		}
	}
	if !models.PipelineStatusKilled.IsTerminal() {
		t.Error("KILLED must be terminal")
	}
}

func TestParsePipelineStatus(t *testing.T) {
	if got, err := models.ParsePipelineStatus("DUE_DILIGENCE"); err != nil || got != models.PipelineStatusDueDiligence {
		t.Fatalf("ParsePipelineStatus = %v, %v", got, err)
	}
	if got, err := models.ParsePipelineStatus("KILLED"); err != nil || got != models.PipelineStatusKilled {
		t.Fatalf("ParsePipelineStatus = %v, %v", got, err)
	}
	if _, err := models.ParsePipelineStatus("PAUSED"); err == nil {
		t.Fatal("expected an error for an unknown stage")
	}
}

func TestParseDealSku(t *testing.T) {
	if got, err := models.ParseDealSku("FLEX_INDUSTRIAL"); err != nil || got != models.DealSkuFlexIndustrial {
		t.Fatalf("ParseDealSku = %v, %v", got, err)
	}
	if _, err := models.ParseDealSku("HOTEL"); err == nil {
		t.Fatal("expected an error for an unknown sku")
	}
}
