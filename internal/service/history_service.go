package service

import (
	"context"

	"github.com/aryan0dhankhar/workshop/internal/domain"
)

// HistoryService lists service work performed on vehicles
type HistoryService struct {
	store domain.ServiceRecordStore
}

func NewHistoryService(store domain.ServiceRecordStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns service records latest first with vehicle, mechanic and parts
func (s *HistoryService) List(ctx context.Context) ([]domain.ServiceRecord, error) {
	return s.store.ListServiceRecords(ctx)
}
