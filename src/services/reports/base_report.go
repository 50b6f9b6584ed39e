package reports

// -----------------------------------------------------------------------------
// Report generation pipeline
//
// Every report runs the same three stages in a fixed order: fetch the raw
// rows, compute the derived rows, format the final lines. Concrete reports
// implement the stages; Generate is the shared driver.
// -----------------------------------------------------------------------------

// ReportData is the intermediate row set flowing between pipeline stages.
type ReportData = []string

// Report is the formatted output, one string per line.
type Report = []string

// -----------------------------------------------------------------------------

// IReport is a single report generation run. Implementations are one-shot:
// build a fresh value per request and pass it to Generate.
type IReport interface {

	// -----------------------------------------------------------------------------

	// FetchData loads the raw rows the report is computed from.
	FetchData() (ReportData, error)

	// -----------------------------------------------------------------------------

	// ComputeReport derives the report rows from the fetched rows.
	ComputeReport(data ReportData) (ReportData, error)

	// -----------------------------------------------------------------------------

	// Format renders the computed rows into final output lines.
	Format(computed ReportData) (Report, error)
}

// -----------------------------------------------------------------------------

// Generate drives the pipeline: FetchData, then ComputeReport on its output,
// then Format on that. The first stage error aborts the run.
func Generate(r IReport) (Report, error) {
	data, err := r.FetchData()
	if err != nil {
		return nil, err
	}
	computed, err := r.ComputeReport(data)
	if err != nil {
		return nil, err
	}
	return r.Format(computed)
}
