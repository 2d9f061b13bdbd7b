package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"activitylog/internal/modules/report/domain"
	"activitylog/internal/modules/report/dto"
	reportout "activitylog/internal/modules/report/port/out"
	"activitylog/internal/platform/clock"
	"activitylog/internal/platform/markdown"
	"activitylog/internal/platform/slug"
)

type ReportService struct {
	source   reportout.Source
	notes    reportout.NoteStore
	renderer reportout.Renderer
	clock    clock.Clock
	logger   zerolog.Logger
}

func NewReportService(source reportout.Source, notes reportout.NoteStore, renderer reportout.Renderer, clk clock.Clock, logger zerolog.Logger) *ReportService {
	return &ReportService{source: source, notes: notes, renderer: renderer, clock: clk, logger: logger}
}

func (s *ReportService) Daily(ctx context.Context, input dto.DailyInput) (dto.ReportOutput, error) {
	date := input.Date
	if date.IsZero() {
		date = s.clock.Now()
	}
	totals, err := s.source.TotalsForDate(ctx, date)
	if err != nil {
		return dto.ReportOutput{}, fmt.Errorf("load totals: %w", err)
	}
	sessions, err := s.source.SessionsForDate(ctx, date)
	if err != nil {
		return dto.ReportOutput{}, fmt.Errorf("load sessions: %w", err)
	}
	report := domain.Daily{
		Date:     date,
		Totals:   domain.SortByName(totals),
		Sessions: domain.SortSessionsByStart(sessions),
	}
	day := date.Format("2006-01-02")
	meta := map[string]any{
		"kind":          string(domain.KindDaily),
		"date":          day,
		"total_seconds": domain.Sum(report.Totals),
		"sessions":      len(report.Sessions),
		"generated_at":  s.clock.Now().Format(time.RFC3339),
	}
	sections := []section{
		{sectionTotals, totalsTable(report.Totals)},
		{sectionSessions, sessionsTable(report.Sessions, clockLayout)},
	}
	return s.produce(ctx, domain.KindDaily, "# Activity log "+day+"\n", meta, sections, input.OutPath)
}

// AllTime sums every recorded session per activity.
func (s *ReportService) AllTime(ctx context.Context, input dto.AllTimeInput) (dto.ReportOutput, error) {
	totals, err := s.source.SessionTotals(ctx)
	if err != nil {
		return dto.ReportOutput{}, fmt.Errorf("load totals: %w", err)
	}
	report := domain.AllTime{Totals: domain.SortByName(totals)}
	if input.SessionLimit > 0 {
		if report.Sessions, err = s.source.Sessions(ctx, input.SessionLimit); err != nil {
			return dto.ReportOutput{}, fmt.Errorf("load sessions: %w", err)
		}
	}
	meta := map[string]any{
		"kind":          string(domain.KindAllTime),
		"activities":    len(report.Totals),
		"total_seconds": domain.Sum(report.Totals),
		"generated_at":  s.clock.Now().Format(time.RFC3339),
	}
	sections := []section{{sectionTotals, totalsTable(report.Totals)}}
	if input.SessionLimit > 0 {
		sections = append(sections, section{sectionSessions, sessionsTable(report.Sessions, stampLayout)})
	}
	return s.produce(ctx, domain.KindAllTime, "# Total time per activity\n", meta, sections, input.OutPath)
}

type section struct {
	name    string
	content string
}

// produce builds the note. Writing into an existing note keeps its own text
// and front matter keys, replacing only the generated sections.
func (s *ReportService) produce(ctx context.Context, kind domain.Kind, title string, meta map[string]any, sections []section, path string) (dto.ReportOutput, error) {
	doc := markdown.Document{Meta: map[string]any{}, Body: title}
	if path != "" {
		var err error
		if path, err = s.notes.Resolve(ctx, path, slug.Make(strings.TrimLeft(title, "# "))+".md"); err != nil {
			return dto.ReportOutput{}, err
		}
		existing, ok, err := s.notes.Read(ctx, path)
		if err != nil {
			return dto.ReportOutput{}, err
		}
		if ok {
			if doc, err = markdown.Parse(existing); err != nil {
				return dto.ReportOutput{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	doc = doc.Merge(meta)
	for _, sec := range sections {
		doc.Body = markdown.ReplaceSection(doc.Body, sec.name, sec.content)
	}
	content, err := doc.Render()
	if err != nil {
		return dto.ReportOutput{}, err
	}
	out := dto.ReportOutput{Kind: string(kind), Markdown: content}
	if path != "" {
		if err := s.notes.Write(ctx, path, content); err != nil {
			return dto.ReportOutput{}, err
		}
		out.Path = path
		s.logger.Info().Str("kind", string(kind)).Str("path", path).Msg("report written")
		return out, nil
	}
	if s.renderer != nil {
		rendered, err := s.renderer.Render(doc.Body)
		if err != nil {
			s.logger.Warn().Err(err).Msg("terminal rendering failed, falling back to markdown")
			rendered = doc.Body
		}
		out.Rendered = rendered
	}
	s.logger.Debug().Str("kind", string(kind)).Msg("report rendered")
	return out, nil
}
