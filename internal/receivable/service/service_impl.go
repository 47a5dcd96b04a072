package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bentoworks/shukin/internal/receivable/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("receivable.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListUserReceivables(ctx context.Context, req domain.ListRequest) ([]domain.Receivable, error) {
	sortKey, sortOrder, err := normalizeSort(req)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.AllUserTotals(ctx, s.db)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Receivable, 0, len(totals))
	for _, t := range totals {
		if !matchesQuery(req.Query, t.UserID, t.UserName, t.CompanyName) {
			continue
		}
		items = append(items, domain.Receivable{
			UserID:       t.UserID,
			UserName:     t.UserName,
			CompanyName:  t.CompanyName,
			TotalOrders:  t.TotalOrders,
			TotalOrdered: t.TotalOrdered,
			TotalPaid:    t.TotalPaid,
			Outstanding:  t.Outstanding(),
		})
	}

	sortReceivables(items, sortKey, sortOrder, func(r domain.Receivable) string { return r.UserID }, func(r domain.Receivable) string { return r.UserName })
	return items, nil
}

func (s *Service) ListCompanyReceivables(ctx context.Context, req domain.ListRequest) ([]domain.Receivable, error) {
	sortKey, sortOrder, err := normalizeSort(req)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.AllUserTotals(ctx, s.db)
	if err != nil {
		return nil, err
	}

	byCompany := make(map[string]*domain.Receivable)
	names := make([]string, 0)
	for _, t := range totals {
		agg, ok := byCompany[t.CompanyName]
		if !ok {
			agg = &domain.Receivable{CompanyName: t.CompanyName}
			byCompany[t.CompanyName] = agg
			names = append(names, t.CompanyName)
		}
		agg.UserCount++
		agg.TotalOrders += t.TotalOrders
		agg.TotalOrdered += t.TotalOrdered
		agg.TotalPaid += t.TotalPaid
		agg.Outstanding += t.Outstanding()
	}

	sort.Strings(names)
	items := make([]domain.Receivable, 0, len(names))
	for _, name := range names {
		if !matchesQuery(req.Query, name) {
			continue
		}
		items = append(items, *byCompany[name])
	}

	sortReceivables(items, sortKey, sortOrder, func(r domain.Receivable) string { return r.CompanyName }, func(r domain.Receivable) string { return r.CompanyName })
	return items, nil
}

func (s *Service) OutstandingForUser(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, domain.ErrInvalidTarget
	}

	totals, err := s.repo.UserTotals(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	if totals == nil {
		return 0, domain.ErrTargetNotFound
	}
	return totals.Outstanding(), nil
}

func (s *Service) OutstandingForCompany(ctx context.Context, companyName string) (int64, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return 0, domain.ErrInvalidTarget
	}

	totals, err := s.repo.CompanyUserTotals(ctx, s.db, companyName)
	if err != nil {
		return 0, err
	}
	if len(totals) == 0 {
		return 0, domain.ErrTargetNotFound
	}

	var outstanding int64
	for _, t := range totals {
		outstanding += t.Outstanding()
	}
	return outstanding, nil
}

func normalizeSort(req domain.ListRequest) (string, string, error) {
	sortKey := strings.ToLower(strings.TrimSpace(req.Sort))
	if sortKey == "" {
		sortKey = domain.SortOutstanding
	}
	switch sortKey {
	case domain.SortOutstanding, domain.SortName, domain.SortOrders:
	default:
		return "", "", domain.ErrInvalidSort
	}

	sortOrder := strings.ToLower(strings.TrimSpace(req.Order))
	if sortOrder == "" {
		sortOrder = domain.OrderDesc
	}
	switch sortOrder {
	case domain.OrderAsc, domain.OrderDesc:
	default:
		return "", "", domain.ErrInvalidSort
	}
	return sortKey, sortOrder, nil
}

func matchesQuery(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// sortReceivables orders items by the requested key, breaking ties on the
// stable identifier so output is deterministic.
func sortReceivables(items []domain.Receivable, sortKey, sortOrder string, id func(domain.Receivable) string, name func(domain.Receivable) string) {
	asc := sortOrder == domain.OrderAsc
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var less, equal bool
		switch sortKey {
		case domain.SortName:
			less = name(a) < name(b)
			equal = name(a) == name(b)
		case domain.SortOrders:
			less = a.TotalOrders < b.TotalOrders
			equal = a.TotalOrders == b.TotalOrders
		default:
			less = a.Outstanding < b.Outstanding
			equal = a.Outstanding == b.Outstanding
		}
		if equal {
			return id(a) < id(b)
		}
		if asc {
			return less
		}
		return !less
	})
}
