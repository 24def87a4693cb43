package ledger

import (
	"context"
	"fmt"
)

// PagingInfo membawa informasi halaman untuk hasil pembacaan ledger.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result membungkus satu halaman entri beserta informasi paging.
type Result struct {
	Entries []Entry
	Paging  PagingInfo
}

// Service mengoordinasikan pembacaan ledger untuk keperluan kepatuhan.
// Jalur tulis tidak lewat sini; satu-satunya penulis adalah Recorder.
type Service struct {
	repo   Repository
	signer *Signer
}

// NewService membuat service pembacaan ledger baru.
func NewService(repo Repository, signer *Signer) *Service {
	return &Service{repo: repo, signer: signer}
}

// Window mengambil entri terbaru dengan paging.
func (s *Service) Window(ctx context.Context, page, pageSize int) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("ledger: repository not configured")
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	entries, err := s.repo.Window(ctx, int32(offset), int32(pageSize+1))
	if err != nil {
		return Result{}, err
	}
	hasNext := len(entries) > pageSize
	if hasNext {
		entries = entries[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Entries: entries, Paging: paging}, nil
}

// Verify menjalankan verifikasi rantai penuh dari awal ledger.
func (s *Service) Verify(ctx context.Context) (ChainReport, error) {
	if s.repo == nil {
		return ChainReport{}, fmt.Errorf("ledger: repository not configured")
	}
	return VerifyChain(ctx, s.repo, s.signer)
}

// Counts mengambil ringkasan jumlah entri.
func (s *Service) Counts(ctx context.Context) (Counts, error) {
	if s.repo == nil {
		return Counts{}, fmt.Errorf("ledger: repository not configured")
	}
	return s.repo.Counts(ctx)
}
