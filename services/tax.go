package services

// Statutory rates. GST is always added on top of the taxable commission, TDS
// is always withheld from it; the ordering is a business invariant.
const (
	GSTRatePercent    = 18.0
	DefaultTDSPercent = 2.0
)

// TaxBreakdown is the result of applying GST and TDS to a taxable commission.
type TaxBreakdown struct {
	GST        float64 `json:"gst"`
	TDS        float64 `json:"tds"`
	NetPayable float64 `json:"netPayable"`
}

// ComputeTax derives GST and TDS from the taxable commission amount.
// net payable = taxable + GST - TDS. Pure arithmetic, no state.
func ComputeTax(taxable, tdsPercent float64) TaxBreakdown {
	gst := taxable * GSTRatePercent / 100
	tds := taxable * tdsPercent / 100
	return TaxBreakdown{
		GST:        gst,
		TDS:        tds,
		NetPayable: taxable + gst - tds,
	}
}
