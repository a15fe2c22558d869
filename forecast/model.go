package forecast

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-demandforecaster/forecast/util"
	"github.com/aouyang1/go-demandforecaster/smoothing"
)

// Model represents a serializeable description of a fitted forecast storing the selected tier,
// the smoothing parameters, and the fit scores
type Model struct {
	ProductID  string            `json:"product_id"`
	Tier       Tier              `json:"tier"`
	FitTier    Tier              `json:"fit_tier"`
	SeriesLen  int               `json:"series_len"`
	FirstMonth time.Time         `json:"first_month"`
	LastMonth  time.Time         `json:"last_month"`
	Mean       float64           `json:"mean"`
	Params     *smoothing.Params `json:"params,omitempty"`
	Scores     *Scores           `json:"scores,omitempty"`
	FitError   string            `json:"fit_error,omitempty"`
}

// TablePrint writes a human readable description of the model
func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sForecast: %s\n", prefix, util.IndentExpand(indent, 0), m.ProductID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sHistory: %d months (%s to %s)\n",
		prefix, util.IndentExpand(indent, 1),
		m.SeriesLen, m.FirstMonth.Format("2006-01"), m.LastMonth.Format("2006-01")); err != nil {
		return err
	}

	tier := m.Tier.String()
	if m.FitTier != m.Tier {
		tier = fmt.Sprintf("%s (fallback to %s)", m.Tier, m.FitTier)
	}
	if _, err := fmt.Fprintf(w, "%s%sTier: %s\n", prefix, util.IndentExpand(indent, 1), tier); err != nil {
		return err
	}
	if m.FitError != "" {
		if _, err := fmt.Fprintf(w, "%s%sFit Error: %s\n", prefix, util.IndentExpand(indent, 1), m.FitError); err != nil {
			return err
		}
	}

	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sMAPE: %.3f    MSE: %.3f    MAE: %.3f    R2: %.3f\n",
			prefix, util.IndentExpand(indent, 1),
			m.Scores.MAPE,
			m.Scores.MSE,
			m.Scores.MAE,
			m.Scores.R2,
		); err != nil {
			return err
		}
	}

	return m.tablePrintParams(w, prefix, indent)
}

func (m Model) tablePrintParams(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sParameters:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sName\tValue\t\n", prefix, util.IndentExpand(indent, 1)); err != nil {
		return err
	}

	rows := [][2]string{}
	if m.Params == nil {
		rows = append(rows, [2]string{"mean", fmt.Sprintf("%.3f", m.Mean)})
	} else {
		rows = append(rows,
			[2]string{"alpha", fmt.Sprintf("%.3f", m.Params.Alpha)},
			[2]string{"beta", fmt.Sprintf("%.3f", m.Params.Beta)},
		)
		if m.Params.Season != nil {
			rows = append(rows, [2]string{"gamma", fmt.Sprintf("%.3f", m.Params.Gamma)})
		}
		rows = append(rows,
			[2]string{"level", fmt.Sprintf("%.3f", m.Params.Level)},
			[2]string{"trend", fmt.Sprintf("%.3f", m.Params.Trend)},
		)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t\n", prefix, util.IndentExpand(indent, 1), row[0], row[1]); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
