package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/workflow"
	"golang.org/x/sync/errgroup"
)

// ReportService builds the operational reports.
type ReportService struct {
	reports repository.ReportStore
	now     func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(reports repository.ReportStore) *ReportService {
	return &ReportService{reports: reports, now: time.Now}
}

// Summary runs the independent aggregates concurrently.
func (s *ReportService) Summary(ctx context.Context) (*models.SummaryReport, error) {
	report := &models.SummaryReport{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.reports.CountLogsByStatus(ctx)
		if err != nil {
			return err
		}
		report.LogsByStatus = counts
		for _, n := range counts {
			report.TotalLogs += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.reports.CountFacilities(ctx)
		report.TotalFacilities = n
		return err
	})
	g.Go(func() error {
		n, err := s.reports.CountMentors(ctx)
		report.TotalMentors = n
		return err
	})
	g.Go(func() error {
		counts, err := s.reports.CountFollowUpsByStatus(ctx)
		if err != nil {
			return err
		}
		report.FollowUpsByStatus = counts
		for _, n := range counts {
			report.TotalFollowUps += n
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build summary report: %w", err)
	}
	return report, nil
}

func (s *ReportService) MentorshipLogs(ctx context.Context, filter models.LogReportFilter) (*models.LogReport, error) {
	if filter.Status != "" {
		if _, err := workflow.ParseStatus(filter.Status); err != nil {
			return nil, badRequest(fmt.Sprintf("Invalid status '%s'", filter.Status))
		}
	}
	return s.reports.LogReport(ctx, filter)
}

func (s *ReportService) FollowUps(ctx context.Context, filter models.FollowUpReportFilter) (*models.FollowUpReport, error) {
	return s.reports.FollowUpReport(ctx, filter, s.now())
}

func (s *ReportService) FacilityCoverage(ctx context.Context, state string) (*models.FacilityCoverageReport, error) {
	return s.reports.FacilityCoverage(ctx, state)
}
