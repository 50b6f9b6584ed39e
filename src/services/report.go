package services

import (
	"strings"

	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"
	"trading-server/src/services/reports"
)

var _ interfaces.IReportService = (*ReportService)(nil)

// -----------------------------------------------------------------------------
// ReportService
//
// Dispatches report requests to registered report builders by report type.
// Builders are registered during bootstrap; registration is not safe for
// concurrent use with GenerateReport.
// -----------------------------------------------------------------------------

type ReportService struct {
	Logger  *logger.Logger
	reports map[string]func(models.MReportRequest) reports.IReport
}

// -----------------------------------------------------------------------------

func NewReportService(log *logger.Logger) *ReportService {
	return &ReportService{
		Logger:  log,
		reports: make(map[string]func(models.MReportRequest) reports.IReport),
	}
}

// -----------------------------------------------------------------------------

// RegisterReport associates a report builder with a report type. Last write
// wins.
func (s *ReportService) RegisterReport(reportType string, builder func(models.MReportRequest) reports.IReport) {
	s.reports[reportType] = builder
}

// -----------------------------------------------------------------------------

// GenerateReport validates the request, resolves the builder and runs the
// generation pipeline. An unknown report type is a client-level failure;
// pipeline errors (storage down) surface as internal errors via the facade.
func (s *ReportService) GenerateReport(request models.MReportRequest) (models.MResponse, error) {
	if err := request.Validate(); err != nil {
		return models.MResponse{Success: false, Message: err.Error()}, nil
	}

	builder, ok := s.reports[request.ReportType]
	if !ok {
		return models.MResponse{
			Success: false,
			Message: "ReportService: unknown report type: " + request.ReportType,
		}, nil
	}

	s.Logger.Info("generating %s report for %s..%s", request.ReportType, request.DateFrom, request.DateTo)

	lines, err := reports.Generate(builder(request))
	if err != nil {
		return models.MResponse{}, err
	}

	return models.MResponse{
		Success: true,
		Message: request.ReportType + " report generated",
		Data:    []byte(strings.Join(lines, "\n")),
	}, nil
}
