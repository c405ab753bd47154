package reports

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportPortfolioExcel renders the concentration, debt-maturity, velocity
// and (when a budget is supplied) allocation analyses into one workbook for
// the investment committee packet.
func ExportPortfolioExcel(ctx context.Context, allocation *AllocationRequest) (*excelize.File, error) {
	concentration, err := GetPortfolioConcentration(ctx)
	if err != nil {
		return nil, err
	}
	maturity, err := GetDebtMaturityWall(ctx)
	if err != nil {
		return nil, err
	}
	velocity, err := GetDealVelocity(ctx)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()

	if err := writeConcentrationSheet(file, concentration); err != nil {
		return nil, err
	}
	if err := writeMaturitySheet(file, maturity); err != nil {
		return nil, err
	}
	if err := writeVelocitySheet(file, velocity); err != nil {
		return nil, err
	}

	if allocation != nil {
		result, err := GetCapitalAllocation(ctx, allocation)
		if err != nil {
			return nil, err
		}
		if err := writeAllocationSheet(file, result); err != nil {
			return nil, err
		}
	}

	file.DeleteSheet("Sheet1")
	return file, nil
}

func writeConcentrationSheet(file *excelize.File, response *ConcentrationResponse) error {
	sheet := "Concentration"
	if _, err := file.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeRow(file, sheet, 1, []interface{}{"Dimension", "Bucket", "Exposure", "Share %", "HHI", "Band"}); err != nil {
		return err
	}
	row := 2
	for _, dimension := range []DimensionConcentration{
		response.Geography, response.Sku, response.Vintage, response.RiskTier, response.Lender,
	} {
		for _, bucket := range dimension.Buckets {
			values := []interface{}{
				dimension.Dimension, bucket.Label, bucket.Exposure.String(),
				bucket.SharePct, dimension.Hhi, dimension.Band,
			}
			if err := writeRow(file, sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeMaturitySheet(file *excelize.File, response *DebtMaturityResponse) error {
	sheet := "Debt Maturity"
	if _, err := file.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Quarter", "Maturing Debt", "Deals", "Weighted DSCR Req", "Refi Risk Score"}
	if err := writeRow(file, sheet, 1, header); err != nil {
		return err
	}
	for i, quarter := range response.Quarters {
		values := []interface{}{
			quarter.Quarter, quarter.TotalMaturingDebt.String(), quarter.DealsAffected,
			quarter.WeightedDscrRequirement, quarter.RefinanceRiskScore,
		}
		if err := writeRow(file, sheet, i+2, values); err != nil {
			return err
		}
	}
	summaryRow := len(response.Quarters) + 3
	summary := []interface{}{
		"Total portfolio debt", response.TotalPortfolioDebt.String(),
		"Maturing 12 months", response.DebtMaturing12Months.String(),
	}
	return writeRow(file, sheet, summaryRow, summary)
}

func writeVelocitySheet(file *excelize.File, response *VelocityResponse) error {
	sheet := "Velocity"
	if _, err := file.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Stage", "Avg Days", "Median", "P75", "P90", "Samples", "Kill Rate %", "Leakage %"}
	if err := writeRow(file, sheet, 1, header); err != nil {
		return err
	}
	for i, summary := range response.StageSummaries {
		values := []interface{}{
			summary.Stage, summary.AvgDays, summary.MedianDays, summary.P75Days,
			summary.P90Days, summary.SampleSize,
			response.KillRates[i].KillRatePct, response.Funnel[i].LeakagePct,
		}
		if err := writeRow(file, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeAllocationSheet(file *excelize.File, response *AllocationResponse) error {
	sheet := "Allocation"
	if _, err := file.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Deal", "Stage", "Equity Required", "Score", "Recommended", "Allocation"}
	if err := writeRow(file, sheet, 1, header); err != nil {
		return err
	}
	for i, candidate := range response.Candidates {
		values := []interface{}{
			candidate.DealName, candidate.Stage, candidate.EquityRequired.String(),
			candidate.RiskAdjustedScore, candidate.Recommended, candidate.AllocationAmount.String(),
		}
		if err := writeRow(file, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(file *excelize.File, sheet string, row int, values []interface{}) error {
	cell := fmt.Sprintf("A%d", row)
	return file.SetSheetRow(sheet, cell, &values)
}
