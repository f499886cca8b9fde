// Package calc holds the pure arithmetic behind job-work reconciliation:
// process loss on returned materials and GST on the job-work service value.
package calc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is wrapped by every calculator precondition failure.
var ErrInvalidInput = errors.New("invalid input")

// LossTolerance is the loss percentage above which a return is flagged.
const LossTolerance = 10.0

const overReceiptWarning = "Received quantity exceeds issued quantity"

var hundred = decimal.NewFromInt(100)

// ProcessLoss is the shrinkage of one material between issue and receipt.
type ProcessLoss struct {
	IssuedQuantity    float64 `json:"issued_quantity"`
	ReceivedQuantity  float64 `json:"received_quantity"`
	Unit              string  `json:"unit"`
	Loss              float64 `json:"loss"`
	LossPercentage    float64 `json:"loss_percentage"`
	IsWithinTolerance bool    `json:"is_within_tolerance"`
	Warning           string  `json:"warning,omitempty"`
}

// CalculateProcessLoss computes the loss for a single issued/received pair.
// Over-receipt is reported as zero loss with a warning, never as a negative loss.
func CalculateProcessLoss(issuedQty, receivedQty float64, unit string) (ProcessLoss, error) {
	if issuedQty <= 0 {
		return ProcessLoss{}, fmt.Errorf("%w: issued quantity must be greater than 0", ErrInvalidInput)
	}
	if receivedQty < 0 {
		return ProcessLoss{}, fmt.Errorf("%w: received quantity cannot be negative", ErrInvalidInput)
	}

	result := ProcessLoss{
		IssuedQuantity:   issuedQty,
		ReceivedQuantity: receivedQty,
		Unit:             unit,
	}
	if receivedQty > issuedQty {
		result.IsWithinTolerance = true
		result.Warning = overReceiptWarning
		return result, nil
	}

	issued := decimal.NewFromFloat(issuedQty)
	loss := issued.Sub(decimal.NewFromFloat(receivedQty))
	pct := loss.Mul(hundred).Div(issued).Round(2)

	result.Loss = loss.InexactFloat64()
	result.LossPercentage = pct.InexactFloat64()
	result.IsWithinTolerance = result.LossPercentage <= LossTolerance
	return result, nil
}

// Line is one issued or received entry of a job order.
type Line struct {
	MaterialID   string
	MaterialType string
	Quantity     float64
	Unit         string
}

// MaterialLoss is the per-material entry of a job order report.
type MaterialLoss struct {
	MaterialID   string `json:"material_id"`
	MaterialType string `json:"material_type"`
	ProcessLoss
}

// Report is the aggregate process loss of a job order.
type Report struct {
	MaterialWiseLoss      []MaterialLoss `json:"material_wise_loss"`
	OverallLossPercentage float64        `json:"overall_loss_percentage"`
	TotalIssued           float64        `json:"total_issued"`
	TotalReceived         float64        `json:"total_received"`
	FlagHighLoss          bool           `json:"flag_high_loss"`
}

// CalculateJobOrderProcessLoss reconciles the issued lines against the received lines.
//
// Each issued line is paired with the first received line carrying the same material id;
// later receipts of that material are not considered. Pairs whose units differ are skipped,
// and only same-unit pairs feed the totals. The overall percentage goes negative when the
// matched receipts exceed the matched issues.
func CalculateJobOrderProcessLoss(issued, received []Line) (Report, error) {
	report := Report{MaterialWiseLoss: []MaterialLoss{}}
	totalIssued := decimal.Zero
	totalReceived := decimal.Zero

	for _, in := range issued {
		idx := firstMatch(received, in.MaterialID)
		if idx < 0 {
			continue
		}
		out := received[idx]
		if out.Unit != in.Unit {
			continue
		}
		loss, err := CalculateProcessLoss(in.Quantity, out.Quantity, in.Unit)
		if err != nil {
			return Report{}, fmt.Errorf("material %s: %w", in.MaterialID, err)
		}
		report.MaterialWiseLoss = append(report.MaterialWiseLoss, MaterialLoss{
			MaterialID:   in.MaterialID,
			MaterialType: in.MaterialType,
			ProcessLoss:  loss,
		})
		totalIssued = totalIssued.Add(decimal.NewFromFloat(in.Quantity))
		totalReceived = totalReceived.Add(decimal.NewFromFloat(out.Quantity))
	}

	report.TotalIssued = totalIssued.InexactFloat64()
	report.TotalReceived = totalReceived.InexactFloat64()
	if totalIssued.IsPositive() {
		overall := totalIssued.Sub(totalReceived).Mul(hundred).Div(totalIssued).Round(2)
		report.OverallLossPercentage = overall.InexactFloat64()
	}
	report.FlagHighLoss = report.OverallLossPercentage > LossTolerance
	return report, nil
}

func firstMatch(lines []Line, materialID string) int {
	for i, l := range lines {
		if l.MaterialID == materialID {
			return i
		}
	}
	return -1
}
