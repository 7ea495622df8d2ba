package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"case_law_app_go/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// CaseQueryService reads cases from the record store
type CaseQueryService struct {
	db *gorm.DB
}

// NewCaseQueryService creates a new query service
func NewCaseQueryService(db *gorm.DB) *CaseQueryService {
	return &CaseQueryService{db: db}
}

// ListCases returns the cases matching filters, newest decision first.
// A nil or empty filter set returns every case.
func (s *CaseQueryService) ListCases(ctx context.Context, filters *models.SearchFilters) ([]models.Case, error) {
	started := time.Now()
	cases, err := s.listCases(ctx, filters)
	observeQuery("list", started, err)
	return cases, err
}

func (s *CaseQueryService) listCases(ctx context.Context, filters *models.SearchFilters) ([]models.Case, error) {
	query := s.db.WithContext(ctx).Model(&models.Case{})

	if filters != nil {
		var ok bool
		query, ok = s.applyFilters(query, filters)
		if !ok {
			return []models.Case{}, nil
		}
	}

	var cases []models.Case
	err := query.
		Order("date DESC").
		Order("created_at DESC").
		Find(&cases).Error

	// A read that outlived its caller is dropped, never applied
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, &RemoteQueryError{Op: "list cases", Err: err}
	}
	if cases == nil {
		cases = []models.Case{}
	}
	return cases, nil
}

// applyFilters narrows the query. It returns false when a filter can never
// match (a malformed year), so the caller can skip the round trip.
func (s *CaseQueryService) applyFilters(query *gorm.DB, f *models.SearchFilters) (*gorm.DB, bool) {
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := containsPattern(q)
		query = query.Where(
			s.db.Where("LOWER(title) LIKE ? ESCAPE '\\'", pattern).
				Or("LOWER(summary) LIKE ? ESCAPE '\\'", pattern).
				Or("LOWER(act_name) LIKE ? ESCAPE '\\'", pattern),
		)
	}

	if v := strings.TrimSpace(f.ActName); v != "" {
		query = query.Where("LOWER(act_name) LIKE ? ESCAPE '\\'", containsPattern(v))
	}
	if v := strings.TrimSpace(f.Section); v != "" {
		query = query.Where("LOWER(section) LIKE ? ESCAPE '\\'", containsPattern(v))
	}
	if v := strings.TrimSpace(f.Court); v != "" {
		query = query.Where("LOWER(court) LIKE ? ESCAPE '\\'", containsPattern(v))
	}

	if v := strings.TrimSpace(f.Year); v != "" {
		if !yearPattern.MatchString(v) {
			return query, false
		}
		query = query.Where("date >= ? AND date <= ?", v+"-01-01", v+"-12-31")
	}

	if v := strings.TrimSpace(f.Jurisdiction); v != "" {
		query = query.Where("jurisdiction = ?", v)
	}

	return query, true
}

// containsPattern builds a lower-cased LIKE pattern matching s anywhere.
// LIKE wildcards in s are escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// GetCase returns a single case by id
func (s *CaseQueryService) GetCase(ctx context.Context, id string) (*models.Case, error) {
	started := time.Now()

	var c models.Case
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		observeQuery("get", started, nil)
		return nil, ErrCaseNotFound
	}
	if err != nil {
		err = &RemoteQueryError{Op: "get case", Err: err}
		observeQuery("get", started, err)
		return nil, err
	}

	observeQuery("get", started, nil)
	return &c, nil
}

// StatusCounts holds the number of cases per status
type StatusCounts struct {
	Landmark  int `json:"landmark"`
	Recent    int `json:"recent"`
	Precedent int `json:"precedent"`
	Total     int `json:"total"`
}

// CountByStatus tallies cases per status
func CountByStatus(cases []models.Case) StatusCounts {
	counts := StatusCounts{Total: len(cases)}
	for _, c := range cases {
		switch c.Status {
		case models.CaseStatusLandmark:
			counts.Landmark++
		case models.CaseStatusRecent:
			counts.Recent++
		case models.CaseStatusPrecedent:
			counts.Precedent++
		}
	}
	return counts
}

// BrowseResult is a presented case list together with catalogue statistics
type BrowseResult struct {
	Cases   []models.Case `json:"cases"`
	Matched int           `json:"matched"`
	Stats   StatusCounts  `json:"stats"`
	View    BrowseView    `json:"view"`
}

// CaseLister is the read side used by Browse. Both CaseQueryService and
// CaseQueryCache satisfy it.
type CaseLister interface {
	ListCases(ctx context.Context, filters *models.SearchFilters) ([]models.Case, error)
}

// Browse runs the filtered read and the unfiltered statistics read
// concurrently, then applies the presentation stage to the filtered list.
func Browse(ctx context.Context, lister CaseLister, filters *models.SearchFilters, view BrowseView) (*BrowseResult, error) {
	var filtered, all []models.Case

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		filtered, err = lister.ListCases(gctx, filters)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = lister.ListCases(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &BrowseResult{
		Cases:   Present(filtered, view.SortBy, view.FilterBy),
		Matched: len(filtered),
		Stats:   CountByStatus(all),
		View:    view,
	}, nil
}
